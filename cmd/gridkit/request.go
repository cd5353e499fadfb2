package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/livefir/gridkit/api"
	"github.com/spf13/cobra"
)

func newRequestCmd() *cobra.Command {
	var (
		body        string
		contentType string
		status      int
		headers     map[string]string
		query       map[string]string
		user, pass  string
	)

	cmd := &cobra.Command{
		Use:   "request METHOD URI",
		Short: "Send an API request and verify its status code",
		Long: `Send an API request and verify its status code. METHOD is one of GET,
POST, PUT, PATCH, DELETE, GET_REDIRECT (redirects are not followed) or
GET_WITHOUT_STATUS_CODE_VERIFICATION. The response body is printed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []api.Option{}
			if user != "" || pass != "" {
				opts = append(opts, api.WithBasicAuth(user, pass))
			}
			client := api.NewClient(opts...)

			resp, err := client.Do(cmd.Context(), api.Request{
				Method:         api.Method(strings.ToUpper(args[0])),
				URI:            args[1],
				Body:           body,
				ContentType:    contentType,
				Headers:        headers,
				Query:          query,
				ExpectedStatus: status,
			})
			var statusErr *api.StatusError
			if err != nil && !errors.As(err, &statusErr) {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "HTTP %d\n", resp.StatusCode)
			if len(resp.Body) > 0 {
				fmt.Fprintln(out, resp.String())
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&body, "body", "d", "", "request body")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Content-Type of the body")
	cmd.Flags().IntVar(&status, "status", 0, "expected status code (default 200)")
	cmd.Flags().StringToStringVarP(&headers, "header", "H", nil, "extra header as name=value")
	cmd.Flags().StringToStringVarP(&query, "query", "q", nil, "query parameter as name=value")
	cmd.Flags().StringVarP(&user, "user", "u", "", "basic auth user")
	cmd.Flags().StringVarP(&pass, "pass", "p", "", "basic auth password")
	return cmd
}
