// Package reachability reports current network connectivity for send-path
// selection.
package reachability

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Status is one connectivity reading.
type Status struct {
	Connected         bool
	InternetReachable bool
}

// Probe checks current network state. Implementations never fail: any
// internal error reads as unreachable.
type Probe interface {
	Check(ctx context.Context) Status
}

// DefaultTimeout bounds each probe step; a probe that has not answered
// within it counts as a failure, not an indefinite wait.
const DefaultTimeout = 3 * time.Second

// NetProbe implements Probe with a TCP dial for link connectivity and an
// HTTP request for internet reachability.
type NetProbe struct {
	Host    string // TCP dial target, e.g. "1.1.1.1:53"
	URL     string // generate_204-style endpoint
	Timeout time.Duration

	// dial and client override the network calls in tests.
	dial   func(network, addr string, timeout time.Duration) (net.Conn, error)
	client *http.Client
}

// NewNetProbe creates a NetProbe. A zero timeout selects DefaultTimeout.
func NewNetProbe(host, url string, timeout time.Duration) *NetProbe {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &NetProbe{Host: host, URL: url, Timeout: timeout}
}

// Check probes the network. It fails toward unreachable: a dial error means
// not connected, and any request error or unexpected status means the
// internet is not reachable.
func (p *NetProbe) Check(ctx context.Context) Status {
	dial := p.dial
	if dial == nil {
		dial = net.DialTimeout
	}

	conn, err := dial("tcp", p.Host, p.Timeout)
	if err != nil {
		return Status{}
	}
	conn.Close()

	reqCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.URL, nil)
	if err != nil {
		return Status{Connected: true}
	}

	client := p.client
	if client == nil {
		client = &http.Client{Timeout: p.Timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Status{Connected: true}
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return Status{Connected: true}
	}
	return Status{Connected: true, InternetReachable: true}
}
