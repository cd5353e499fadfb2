package gridkit

import (
	"net"
)

// FreePort asks the kernel for a free TCP port and releases it right away.
//
// Another process may claim the port between the release and the caller's
// own bind. Callers that cannot tolerate that should bind port 0 themselves.
func FreePort() (int, error) {
	a, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		Logger().Error("failed to resolve loopback address", "error", err)
		return 0, &PortAllocationError{Err: err}
	}

	l, err := net.ListenTCP("tcp", a)
	if err != nil {
		Logger().Error("failed to get an open port", "error", err)
		return 0, &PortAllocationError{Err: err}
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}
