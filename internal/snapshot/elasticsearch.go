package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	elasticsearch "github.com/elastic/go-elasticsearch/v7"
	jsoniter "github.com/json-iterator/go"
	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/market"
	"github.com/pkg/errors"
)

// ElasticSearch is for reading the newest indexed record of every symbol.
type ElasticSearch struct {
	ES        *elasticsearch.Client
	IndexName string
	Cfg       *config.ES
}

// NewElasticSearch initializes elastic search connection with configured values.
func NewElasticSearch(appCtx context.Context, cfg *config.ES) (*ElasticSearch, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = cfg.MaxIdleConns
	t.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: t,
	}
	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	ctx, cancel := reqContext(appCtx, cfg.ReqTimeoutSec)
	defer cancel()
	resp, err := es.Ping(es.Ping.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "elastic search ping")
	}
	resp.Body.Close()
	if resp.IsError() {
		return nil, errors.Errorf("elastic search ping, code : %v, status : %v", resp.StatusCode, resp.Status())
	}
	return &ElasticSearch{ES: es, IndexName: cfg.IndexName, Cfg: cfg}, nil
}

func (e *ElasticSearch) Name() string { return config.SourceElasticSearch }

// latestQuery groups documents by symbol and keeps the newest one of each.
func latestQuery(maxSymbols int) []byte {
	return []byte(fmt.Sprintf(`{"size":0,"aggs":{"symbols":{"terms":{"field":"symbol","size":%d},`+
		`"aggs":{"latest":{"top_hits":{"size":1,"sort":[{"timestamp":{"order":"desc"}}]}}}}}}`, maxSymbols))
}

type esSearchResp struct {
	Aggregations struct {
		Symbols struct {
			Buckets []struct {
				Key    string `json:"key"`
				Latest struct {
					Hits struct {
						Hits []struct {
							Source jsoniter.RawMessage `json:"_source"`
						} `json:"hits"`
					} `json:"hits"`
				} `json:"latest"`
			} `json:"buckets"`
		} `json:"symbols"`
	} `json:"aggregations"`
}

// Load returns the newest document of every symbol in the index.
func (e *ElasticSearch) Load(appCtx context.Context) ([]market.Record, error) {
	ctx, cancel := reqContext(appCtx, e.Cfg.ReqTimeoutSec)
	defer cancel()

	resp, err := e.ES.Search(
		e.ES.Search.WithContext(ctx),
		e.ES.Search.WithIndex(e.IndexName),
		e.ES.Search.WithBody(bytes.NewReader(latestQuery(e.Cfg.MaxSymbols))),
	)
	if err != nil {
		return nil, errors.Wrap(err, "elastic search query")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errors.Errorf("elastic search query, code : %v, status : %v", resp.StatusCode, resp.Status())
	}

	var sr esSearchResp
	if err := jsoniter.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, errors.Wrap(err, "decode elastic search response")
	}
	records := make([]market.Record, 0, len(sr.Aggregations.Symbols.Buckets))
	for _, b := range sr.Aggregations.Symbols.Buckets {
		for _, hit := range b.Latest.Hits.Hits {
			var r market.Record
			if err := jsoniter.Unmarshal(hit.Source, &r); err != nil {
				return nil, errors.Wrapf(err, "decode elastic search document of %s", b.Key)
			}
			records = append(records, r)
		}
	}
	return records, nil
}
