package gridkit

import "encoding/base64"

// AuthorizationHeader is the header carrying request credentials
const AuthorizationHeader = "Authorization"

// EncodeCredentials returns the padded standard Base64 encoding of "user:pass".
func EncodeCredentials(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}

// BasicAuthHeader returns an Authorization header value for HTTP basic auth
func BasicAuthHeader(user, pass string) string {
	return "Basic " + EncodeCredentials(user, pass)
}
