// Package syncclient is the producer-side SDK for pushing records into a
// tabled aggregator. Entities implement Converter; pushes never fail with an
// error, they classify into Success, Rejected, or Unavailable outcomes so
// producers can decide what to do without unwinding their own request path.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Default per-call timeouts.
const (
	DefaultTimeout     = 5 * time.Second
	DefaultBulkTimeout = 30 * time.Second
)

// Converter is the capability an entity needs to be pushed to the aggregator.
// ToRecord returns the flat payload stored verbatim on the tabled side; use
// the canonical helpers (Money, Date, Choice) for values that must cross
// service boundaries in a uniform shape.
type Converter interface {
	ToRecord() map[string]any
}

// Status classifies the result of a push.
type Status string

const (
	// StatusSuccess means the aggregator committed the batch (HTTP 201).
	StatusSuccess Status = "success"
	// StatusRejected means the aggregator answered with a non-201 status.
	// The batch is not retried; fix the payload or schema and push again.
	StatusRejected Status = "rejected"
	// StatusUnavailable means the aggregator could not be reached in time.
	// The batch may be retried as-is (the Outbox does this automatically).
	StatusUnavailable Status = "unavailable"
)

// Outcome is the classified result of a push. Push and PushAll always return
// an Outcome, never an error.
type Outcome struct {
	Status Status
	// HTTPStatus is the response code, set for Success and Rejected.
	HTTPStatus int
	// Detail carries the server's message on rejection or the transport
	// error on unavailability.
	Detail string
	// Count is the number of records the aggregator created on success.
	Count int
}

// Config configures a sync client for one target schema.
type Config struct {
	// BaseURL of the tabled server, e.g. "http://tabled:8080".
	BaseURL string
	// SchemaID is the target schema for every push from this client.
	SchemaID string
	// SourceService labels each pushed batch with the producer's name.
	SourceService string
	// Token is an optional bearer token.
	Token string
	// Timeout bounds single-record pushes (default 5s).
	Timeout time.Duration
	// BulkTimeout bounds PushAll batches (default 30s).
	BulkTimeout time.Duration
}

// Client pushes records for a single schema.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New creates a sync client. Zero timeouts fall back to the defaults.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BulkTimeout == 0 {
		cfg.BulkTimeout = DefaultBulkTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// Push sends a single entity, bounded by the single-push timeout.
func (c *Client) Push(ctx context.Context, entity Converter) Outcome {
	return c.push(ctx, []map[string]any{entity.ToRecord()}, c.cfg.Timeout)
}

// PushAll sends a batch of entities in one populate call, bounded by the bulk
// timeout. The aggregator commits the batch atomically: either every record
// lands or none do.
func (c *Client) PushAll(ctx context.Context, entities []Converter) Outcome {
	records := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		records = append(records, e.ToRecord())
	}
	return c.push(ctx, records, c.cfg.BulkTimeout)
}

// pushPayload sends pre-marshaled records (used by the Outbox so queued
// payloads survive producer restarts without re-running converters).
func (c *Client) pushPayload(ctx context.Context, data []json.RawMessage) Outcome {
	body, err := json.Marshal(map[string]any{
		"source_service": c.cfg.SourceService,
		"data":           data,
	})
	if err != nil {
		return Outcome{Status: StatusRejected, Detail: fmt.Sprintf("marshaling batch: %v", err)}
	}
	return c.doPush(ctx, body, c.cfg.BulkTimeout)
}

func (c *Client) push(ctx context.Context, records []map[string]any, timeout time.Duration) Outcome {
	body, err := json.Marshal(map[string]any{
		"source_service": c.cfg.SourceService,
		"data":           records,
	})
	if err != nil {
		return Outcome{Status: StatusRejected, Detail: fmt.Sprintf("marshaling batch: %v", err)}
	}
	return c.doPush(ctx, body, timeout)
}

func (c *Client) doPush(ctx context.Context, body []byte, timeout time.Duration) Outcome {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := c.cfg.BaseURL + "/v1/schemas/" + c.cfg.SchemaID + "/populate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Outcome{Status: StatusRejected, Detail: fmt.Sprintf("creating request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Dial failures, timeouts, connection resets all classify the same
		// way: the aggregator was not reachable in time.
		return Outcome{Status: StatusUnavailable, Detail: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusCreated {
		var result struct {
			Count int `json:"count"`
		}
		_ = json.Unmarshal(respBody, &result)
		return Outcome{Status: StatusSuccess, HTTPStatus: resp.StatusCode, Count: result.Count}
	}

	return Outcome{
		Status:     StatusRejected,
		HTTPStatus: resp.StatusCode,
		Detail:     rejectionDetail(respBody),
	}
}

// rejectionDetail extracts a readable message from an error response body.
func rejectionDetail(body []byte) string {
	var errResp struct {
		Error  string            `json:"error"`
		Errors map[string]string `json:"errors"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Error != "" {
			return errResp.Error
		}
		if len(errResp.Errors) > 0 {
			parts := make([]string, 0, len(errResp.Errors))
			for field, msg := range errResp.Errors {
				parts = append(parts, field+": "+msg)
			}
			return strings.Join(parts, "; ")
		}
	}
	return string(body)
}
