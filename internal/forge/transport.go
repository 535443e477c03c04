package forge

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	appConfig "github.com/festy23/stagebot/internal/config"
)

// newTransport returns a keep-alive pool sized for a single forge host.
func newTransport(cfg appConfig.ForgeConfig) (*http.Transport, error) {
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("MaxIdleConns must be non-negative")
	}
	if cfg.IdleConnTimeout < 0 {
		return nil, fmt.Errorf("IdleConnTimeout must be non-negative")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.MaxIdleConns > 0 {
		transport.MaxIdleConns = cfg.MaxIdleConns
		// Every call goes to the same host.
		transport.MaxIdleConnsPerHost = cfg.MaxIdleConns
	}
	if cfg.IdleConnTimeout > 0 {
		transport.IdleConnTimeout = cfg.IdleConnTimeout
	}
	return transport, nil
}

// newHTTPClient builds the token-authenticated client on top of the pooled transport.
func newHTTPClient(cfg appConfig.ForgeConfig) (*http.Client, error) {
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	base := &http.Client{Transport: transport}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = cfg.Timeout
	return tc, nil
}
