package snapshot

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/connector"
	"github.com/milkywaybrain/marketstream/internal/market"
	"github.com/pkg/errors"
)

// REST loads snapshots from the backend market data API.
type REST struct {
	Client  *connector.REST
	BaseURL string
}

// NewREST creates a source for the configured backend.
func NewREST(cfg *config.REST) *REST {
	return &REST{
		Client:  connector.NewREST(cfg),
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

func (r *REST) Name() string { return config.SourceREST }

// Load fetches the latest record of every available symbol.
func (r *REST) Load(ctx context.Context) ([]market.Record, error) {
	body, err := r.get(ctx, config.SnapshotsPath)
	if err != nil {
		return nil, err
	}
	records, err := market.DecodeRecords(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode snapshots")
	}
	return records, nil
}

// One fetches the latest record of symbol.
func (r *REST) One(ctx context.Context, symbol string) (market.Record, error) {
	body, err := r.get(ctx, config.SnapshotPath+url.PathEscape(strings.ToUpper(symbol)))
	if err != nil {
		return market.Record{}, err
	}
	record, err := market.DecodeRecord(body)
	if err != nil {
		return market.Record{}, errors.Wrapf(err, "decode snapshot of %s", symbol)
	}
	return record, nil
}

// Symbols fetches the list of symbols the backend publishes.
func (r *REST) Symbols(ctx context.Context) ([]string, error) {
	body, err := r.get(ctx, config.SymbolsPath)
	if err != nil {
		return nil, err
	}
	var symbols []string
	if err := jsoniter.Unmarshal(body, &symbols); err != nil {
		return nil, errors.Wrap(err, "decode symbols")
	}
	return symbols, nil
}

// Health returns the backend liveness message.
func (r *REST) Health(ctx context.Context) (string, error) {
	body, err := r.get(ctx, config.HealthPath)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (r *REST) get(ctx context.Context, path string) ([]byte, error) {
	req, err := r.Client.Request(ctx, r.BaseURL+path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errors.Wrap(ErrNotFound, path)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errors.Errorf("GET %s, code : %v, status : %v", path, resp.StatusCode, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return body, nil
}
