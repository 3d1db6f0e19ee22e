package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/groblegark/tabled/internal/events"
	"github.com/groblegark/tabled/internal/idgen"
	"github.com/groblegark/tabled/internal/model"
)

type createSchemaInput struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	FieldsConfig json.RawMessage `json:"fields_config"`
}

type updateSchemaInput struct {
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	FieldsConfig json.RawMessage `json:"fields_config"`
}

// handleCreateSchema handles POST /v1/schemas.
func (s *TabledServer) handleCreateSchema(w http.ResponseWriter, r *http.Request) {
	var in createSchemaInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := idgen.Schema()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create schema")
		return
	}

	now := time.Now().UTC()
	schema := &model.Schema{
		ID:           id,
		Name:         in.Name,
		Description:  in.Description,
		FieldsConfig: in.FieldsConfig,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := model.ValidateSchema(schema); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	// Names are unique across active and inactive schemas.
	if existing, err := s.store.GetSchemaByName(r.Context(), schema.Name); err != nil && !errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusInternalServerError, "failed to create schema")
		return
	} else if existing != nil {
		writeValidationError(w, &model.ValidationError{Errors: []model.FieldError{
			{Field: "name", Message: "a schema with this name already exists"},
		}})
		return
	}

	if err := s.store.CreateSchema(r.Context(), schema); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create schema")
		return
	}

	s.publish(r.Context(), events.TopicSchemaCreated, events.SchemaCreated{Schema: schema})

	writeJSON(w, http.StatusCreated, schema)
}

// handleListSchemas handles GET /v1/schemas.
func (s *TabledServer) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.SchemaFilter{
		Search: q.Get("search"),
	}
	if v := q.Get("active"); v == "all" || v == "false" {
		filter.IncludeInactive = true
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

	schemas, total, err := s.store.ListSchemas(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list schemas")
		return
	}

	// Ensure schemas is never null in JSON output.
	if schemas == nil {
		schemas = []*model.Schema{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"schemas": schemas,
		"total":   total,
	})
}

// handleGetSchema handles GET /v1/schemas/{id}.
func (s *TabledServer) handleGetSchema(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, schema)
}

// handleUpdateSchema handles PATCH /v1/schemas/{id}.
// A changed fields_config is revalidated structurally; existing records are
// never migrated or rechecked.
func (s *TabledServer) handleUpdateSchema(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in updateSchemaInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
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

	nameChanged := false
	if in.Name != nil && *in.Name != schema.Name {
		schema.Name = *in.Name
		nameChanged = true
	}
	if in.Description != nil {
		schema.Description = *in.Description
	}
	if in.FieldsConfig != nil {
		schema.FieldsConfig = in.FieldsConfig
	}

	if err := model.ValidateSchema(schema); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	if nameChanged {
		if existing, err := s.store.GetSchemaByName(r.Context(), schema.Name); err != nil && !errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusInternalServerError, "failed to update schema")
			return
		} else if existing != nil && existing.ID != schema.ID {
			writeValidationError(w, &model.ValidationError{Errors: []model.FieldError{
				{Field: "name", Message: "a schema with this name already exists"},
			}})
			return
		}
	}

	if err := s.store.UpdateSchema(r.Context(), schema); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update schema")
		return
	}

	s.publish(r.Context(), events.TopicSchemaUpdated, events.SchemaUpdated{Schema: schema})

	writeJSON(w, http.StatusOK, schema)
}

// handleDeactivateSchema handles POST /v1/schemas/{id}/deactivate.
// Deactivation hides the schema from default listings; its records remain
// queryable.
func (s *TabledServer) handleDeactivateSchema(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	schema, err := s.store.DeactivateSchema(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "schema not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to deactivate schema")
		return
	}

	s.publish(r.Context(), events.TopicSchemaDeactivated, events.SchemaDeactivated{Schema: schema})

	writeJSON(w, http.StatusOK, schema)
}

// handleDeleteSchema handles DELETE /v1/schemas/{id}.
// Deletion cascades to every record under the schema.
func (s *TabledServer) handleDeleteSchema(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteSchema(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "schema not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete schema")
		return
	}

	s.publish(r.Context(), events.TopicSchemaDeleted, events.SchemaDeleted{SchemaID: id})

	w.WriteHeader(http.StatusNoContent)
}
