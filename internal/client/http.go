package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/groblegark/tabled/internal/model"
)

// HTTPClient implements TabledClient using the tabled HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Schema registry ---

func (c *HTTPClient) CreateSchema(ctx context.Context, req *CreateSchemaRequest) (*model.Schema, error) {
	var schema model.Schema
	if err := c.doJSON(ctx, http.MethodPost, "/v1/schemas", req, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

func (c *HTTPClient) GetSchema(ctx context.Context, id string) (*model.Schema, error) {
	var schema model.Schema
	if err := c.doJSON(ctx, http.MethodGet, "/v1/schemas/"+url.PathEscape(id), nil, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

func (c *HTTPClient) ListSchemas(ctx context.Context, req *ListSchemasRequest) (*ListSchemasResponse, error) {
	q := url.Values{}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.IncludeInactive {
		q.Set("active", "all")
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/schemas"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListSchemasResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateSchema(ctx context.Context, id string, req *UpdateSchemaRequest) (*model.Schema, error) {
	var schema model.Schema
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/schemas/"+url.PathEscape(id), req, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

func (c *HTTPClient) DeactivateSchema(ctx context.Context, id string) (*model.Schema, error) {
	var schema model.Schema
	if err := c.doJSON(ctx, http.MethodPost, "/v1/schemas/"+url.PathEscape(id)+"/deactivate", nil, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

func (c *HTTPClient) DeleteSchema(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/schemas/"+url.PathEscape(id), nil, nil)
}

// --- Records ---

func (c *HTTPClient) Populate(ctx context.Context, schemaID string, req *PopulateRequest) (*PopulateResponse, error) {
	var resp PopulateResponse
	path := "/v1/schemas/" + url.PathEscape(schemaID) + "/populate"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	var record model.Record
	if err := c.doJSON(ctx, http.MethodGet, "/v1/records/"+url.PathEscape(id), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *HTTPClient) ListRecords(ctx context.Context, req *ListRecordsRequest) (*ListRecordsResponse, error) {
	q := url.Values{}
	if req.SchemaID != "" {
		q.Set("schema_id", req.SchemaID)
	}
	if req.SourceService != "" {
		q.Set("source_service", req.SourceService)
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/records"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListRecordsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ClearRecords(ctx context.Context, schemaID string) (*ClearRecordsResponse, error) {
	var resp ClearRecordsResponse
	path := "/v1/schemas/" + url.PathEscape(schemaID) + "/records"
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string            `json:"error"`
			Errors map[string]string `json:"errors"`
		}
		if json.Unmarshal(respBody, &errResp) == nil {
			if errResp.Error != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
			}
			if len(errResp.Errors) > 0 {
				parts := make([]string, 0, len(errResp.Errors))
				for field, msg := range errResp.Errors {
					parts = append(parts, field+": "+msg)
				}
				return &APIError{StatusCode: resp.StatusCode, Message: strings.Join(parts, "; ")}
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
