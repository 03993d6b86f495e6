package connector

import (
	"context"
	"net/http"
	"time"

	"github.com/milkywaybrain/marketstream/internal/config"
)

// REST is for REST API connection.
type REST struct {
	HTTPClient *http.Client
	Cfg        *config.REST
}

// NewREST creates a http client with configured timeout and idle connection limits.
func NewREST(cfg *config.REST) *REST {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.MaxIdleConns > 0 {
		t.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	}
	client := &http.Client{
		Transport: t,
		Timeout:   time.Duration(cfg.ReqTimeoutSec) * time.Second,
	}
	return &REST{HTTPClient: client, Cfg: cfg}
}

// Request creates a GET request for url.
func (r *REST) Request(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Do sends the request.
func (r *REST) Do(req *http.Request) (*http.Response, error) {
	return r.HTTPClient.Do(req)
}
