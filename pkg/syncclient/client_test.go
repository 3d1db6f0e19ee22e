package syncclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// employee is a sample producer entity.
type employee struct {
	ID       string
	FullName string
	Salary   float64
	HiredAt  time.Time
	Status   string
}

var employeeStatusLabels = map[string]string{
	"act": "Active",
	"trm": "Terminated",
}

func (e employee) ToRecord() map[string]any {
	return map[string]any{
		"id":        e.ID,
		"full_name": e.FullName,
		"salary":    Money(e.Salary),
		"hired_at":  Date(e.HiredAt),
		"status":    Choice(e.Status, employeeStatusLabels),
	}
}

func testClient(baseURL string) *Client {
	return New(Config{
		BaseURL:       baseURL,
		SchemaID:      "ts-emp",
		SourceService: "user_service",
	})
}

func TestPush_Success(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/schemas/ts-emp/populate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "created 1 records", "count": 1})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	outcome := c.Push(context.Background(), employee{
		ID: "1", FullName: "Ivan Petrov", Salary: 1234.567,
		HiredAt: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Status: "act",
	})

	if outcome.Status != StatusSuccess {
		t.Fatalf("status = %q, detail = %q", outcome.Status, outcome.Detail)
	}
	if outcome.HTTPStatus != 201 || outcome.Count != 1 {
		t.Fatalf("got %+v", outcome)
	}

	if gotBody["source_service"] != "user_service" {
		t.Fatalf("source_service = %v", gotBody["source_service"])
	}
	data := gotBody["data"].([]any)
	rec := data[0].(map[string]any)
	if rec["salary"] != 1234.57 {
		t.Fatalf("salary = %v, want canonical 1234.57", rec["salary"])
	}
	if rec["hired_at"] != "2024-03-15" {
		t.Fatalf("hired_at = %v", rec["hired_at"])
	}
	if rec["status"] != "Active" {
		t.Fatalf("status = %v", rec["status"])
	}
}

func TestPushAll_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Data []map[string]any `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"count": len(body.Data)})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	entities := []Converter{
		employee{ID: "1", FullName: "A"},
		employee{ID: "2", FullName: "B"},
		employee{ID: "3", FullName: "C"},
	}
	outcome := c.PushAll(context.Background(), entities)
	if outcome.Status != StatusSuccess || outcome.Count != 3 {
		t.Fatalf("got %+v", outcome)
	}
}

func TestPush_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"errors": map[string]string{"source_service": "is required"}})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	outcome := c.Push(context.Background(), employee{ID: "1"})
	if outcome.Status != StatusRejected {
		t.Fatalf("status = %q", outcome.Status)
	}
	if outcome.HTTPStatus != 400 || outcome.Detail != "source_service: is required" {
		t.Fatalf("got %+v", outcome)
	}
}

func TestPush_RejectedNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "schema not found"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	outcome := c.Push(context.Background(), employee{ID: "1"})
	if outcome.Status != StatusRejected || outcome.HTTPStatus != 404 {
		t.Fatalf("got %+v", outcome)
	}
	if outcome.Detail != "schema not found" {
		t.Fatalf("detail = %q", outcome.Detail)
	}
}

func TestPush_Unavailable(t *testing.T) {
	// A server that is immediately closed leaves a port nothing listens on.
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	c := testClient(srv.URL)
	start := time.Now()
	outcome := c.Push(context.Background(), employee{ID: "1"})
	if outcome.Status != StatusUnavailable {
		t.Fatalf("status = %q", outcome.Status)
	}
	if outcome.Detail == "" {
		t.Fatal("expected transport detail")
	}
	if elapsed := time.Since(start); elapsed > DefaultTimeout+time.Second {
		t.Fatalf("push took %v, should be bounded by the timeout", elapsed)
	}
}

func TestPush_TimeoutClassifiesUnavailable(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		srv.Close()
	}()

	c := New(Config{
		BaseURL:       srv.URL,
		SchemaID:      "ts-emp",
		SourceService: "user_service",
		Timeout:       50 * time.Millisecond,
	})
	outcome := c.Push(context.Background(), employee{ID: "1"})
	if outcome.Status != StatusUnavailable {
		t.Fatalf("status = %q, detail = %q", outcome.Status, outcome.Detail)
	}
}
