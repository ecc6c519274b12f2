package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrPingTimeout is returned when the probe does not connect within its timeout
var ErrPingTimeout = errors.New("connection timed out")

// Dialer opens network connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// PingAddress checks that a TCP connection to host:port can be opened within
// timeout. The connection is closed straight away.
func PingAddress(ctx context.Context, dialer Dialer, host, port string, timeout time.Duration) error {
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	address := net.JoinHostPort(host, port)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%s: %w", address, ErrPingTimeout)
		}
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	return conn.Close()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
