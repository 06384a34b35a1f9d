package device

import (
	"context"
	"net"
	"time"
)

// DefaultProbeTimeout bounds a reachability check.
const DefaultProbeTimeout = 5 * time.Second

// Prober checks whether a control unit accepts connections.
type Prober interface {
	Probe(ctx context.Context, addr string) error
}

// TCPProber opens and closes a TCP connection to the device.
type TCPProber struct {
	Timeout time.Duration
}

func (p TCPProber) Probe(ctx context.Context, addr string) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return conn.Close()
}
