// ABOUTME: SSH+SOCKS5 dialer for reaching the catalog API through a jump host
// ABOUTME: Parses CATALOG_ALL_PROXY and lazily builds the tunnel on first dial

package services

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// createSOCKS5DialContextFunc creates a dial function for SSH+SOCKS5 proxy connections.
// Supports format: ssh+socks5://user@host:port?private-key=/path/to/key
// Returns nil when the proxy URL is unusable.
func createSOCKS5DialContextFunc(allProxy string) func(ctx context.Context, network, address string) (net.Conn, error) {
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		slog.Error("Failed to parse CATALOG_ALL_PROXY URL", "error", err)
		return nil
	}
	if proxyURL.Scheme != "socks5" || proxyURL.Host == "" {
		slog.Error("CATALOG_ALL_PROXY must look like ssh+socks5://user@host:port?private-key=/path")
		return nil
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	keyPath := proxyURL.Query().Get("private-key")
	if keyPath == "" {
		slog.Error("CATALOG_ALL_PROXY missing required 'private-key' query param")
		return nil
	}

	key, err := os.ReadFile(keyPath)
	if err != nil {
		slog.Error("Failed to read SSH private key", "path", keyPath, "error", err)
		return nil
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.Mutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.Lock()
		if dialer == nil {
			d, err := socks5Proxy.Dialer(username, string(key), proxyURL.Host)
			if err != nil {
				mut.Unlock()
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = d
		}
		d := dialer
		mut.Unlock()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return d(network, address)
	}
}
