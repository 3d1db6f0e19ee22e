package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/groblegark/tabled/internal/events"
	"github.com/groblegark/tabled/internal/idgen"
	"github.com/groblegark/tabled/internal/model"
	"github.com/groblegark/tabled/internal/store"
)

// handlePopulate handles POST /v1/schemas/{id}/populate.
// The whole batch is validated before any write and inserted in a single
// transaction; a failure on any element rolls back every insert.
func (s *TabledServer) handlePopulate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	// The schema is resolved before the body is even looked at, so a bad
	// batch against an unknown schema reports 404, not 400.
	schema, err := s.store.GetSchema(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "schema not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get schema")
		return
	}

	var req model.PopulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := model.ValidatePopulate(&req); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	now := time.Now().UTC()
	records := make([]*model.Record, 0, len(req.Data))
	err = s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		for _, elem := range req.Data {
			recID, err := idgen.Record()
			if err != nil {
				return fmt.Errorf("generating record id: %w", err)
			}
			rec := &model.Record{
				ID:            recID,
				SchemaID:      schema.ID,
				SchemaName:    schema.Name,
				Data:          elem,
				SourceService: req.SourceService,
				SourceID:      model.SourceIDOf(elem),
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.CreateRecord(r.Context(), rec); err != nil {
				return fmt.Errorf("creating record: %w", err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		slog.Error("populate failed", "schema_id", schema.ID, "source_service", req.SourceService, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to populate records")
		return
	}

	s.publish(r.Context(), events.TopicRecordsPopulated, events.RecordsPopulated{
		SchemaID:      schema.ID,
		SourceService: req.SourceService,
		Count:         len(records),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": fmt.Sprintf("created %d records", len(records)),
		"count":   len(records),
		"data":    records,
	})
}

// handleListRecords handles GET /v1/records.
func (s *TabledServer) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.RecordFilter{
		SchemaID:      q.Get("schema_id"),
		SourceService: q.Get("source_service"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	records, total, err := s.store.ListRecords(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	// Ensure records is never null in JSON output.
	if records == nil {
		records = []*model.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"total":   total,
	})
}

// handleGetRecord handles GET /v1/records/{id}.
func (s *TabledServer) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	record, err := s.store.GetRecord(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get record")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleClearRecords handles DELETE /v1/schemas/{id}/records.
// Deletes every record under the schema and reports how many went away.
func (s *TabledServer) handleClearRecords(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	schema, err := s.store.GetSchema(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "schema not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get schema")
		return
	}

	count, err := s.store.ClearRecords(r.Context(), schema.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear records")
		return
	}

	s.publish(r.Context(), events.TopicRecordsCleared, events.RecordsCleared{
		SchemaID: schema.ID,
		Count:    count,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("deleted %d records from schema %q", count, schema.Name),
		"count":   count,
	})
}
