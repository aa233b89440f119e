package ledger

import (
	"errors"
	"fmt"
	"net"

	ma "github.com/multiformats/go-multiaddr"
)

var errUnsupportedEndpoint = errors.New("unsupported ledger endpoint")

// ParseEndpoint converts a fullnode multiaddr such as
// /dns4/fullnode.example.org/tcp/443/https into a dialable URL.
func ParseEndpoint(raw string) (string, error) {
	addr, err := ma.NewMultiaddr(raw)
	if err != nil {
		return "", fmt.Errorf("parse ledger endpoint %q: %w", raw, err)
	}

	host := ""
	for _, code := range []int{ma.P_DNS4, ma.P_DNS6, ma.P_DNS, ma.P_IP4, ma.P_IP6} {
		if v, err := addr.ValueForProtocol(code); err == nil && v != "" {
			host = v
			break
		}
	}
	if host == "" {
		return "", fmt.Errorf("%w: %q has no host component", errUnsupportedEndpoint, raw)
	}

	port, err := addr.ValueForProtocol(ma.P_TCP)
	if err != nil || port == "" {
		return "", fmt.Errorf("%w: %q has no tcp port", errUnsupportedEndpoint, raw)
	}

	scheme := "http"
	if _, err := addr.ValueForProtocol(ma.P_HTTPS); err == nil {
		scheme = "https"
	} else if _, err := addr.ValueForProtocol(ma.P_TLS); err == nil {
		scheme = "https"
	} else if _, err := addr.ValueForProtocol(ma.P_HTTP); err != nil {
		return "", fmt.Errorf("%w: %q has no http/https component", errUnsupportedEndpoint, raw)
	}

	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(host, port)), nil
}

func parseEndpoints(raw []string) ([]string, error) {
	urls := make([]string, 0, len(raw))
	for _, entry := range raw {
		u, err := ParseEndpoint(entry)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	if len(urls) == 0 {
		return nil, errors.New("ledger rpc transport requires at least one endpoint")
	}
	return urls, nil
}
