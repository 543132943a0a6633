// Package resource contains the HTTP handlers shared by every CRUD
// resource (students, products). One generic Handler is instantiated per
// entity type; the routes it serves are:
//
//	GET    /{resource}        → List
//	GET    /{resource}/{id}   → Get
//	POST   /{resource}        → Create
//	PUT    /{resource}/{id}   → Update
//	DELETE /{resource}/{id}   → Delete
//
// Handlers write every expected outcome (200/201/204/400/404/422)
// themselves and return an error only for faults they cannot classify;
// those are rendered by the problem envelope.
package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/crud-api/internal/service"
	"github.com/aanand-mishra/crud-api/internal/types"
	"github.com/aanand-mishra/crud-api/internal/utils/response"
)

// Handler serves one resource backed by a generic service.
type Handler[T any, P types.Entity[T]] struct {
	name     string
	svc      *service.Service[T, P]
	validate *validator.Validate
}

// New returns the handler for the resource mounted at "/"+name.
func New[T any, P types.Entity[T]](name string, svc *service.Service[T, P], validate *validator.Validate) *Handler[T, P] {
	return &Handler[T, P]{name: name, svc: svc, validate: validate}
}

// Name is the path segment the resource is mounted under.
func (h *Handler[T, P]) Name() string { return h.name }

// List handles GET /{resource}. An empty table yields [].
func (h *Handler[T, P]) List(w http.ResponseWriter, r *http.Request) error {
	slog.InfoContext(r.Context(), "listing records", slog.String("resource", h.name))

	items, err := h.svc.GetAll(r.Context())
	if err != nil {
		return fmt.Errorf("list %s: %w", h.name, err)
	}

	return response.WriteJSON(w, http.StatusOK, items)
}

// Get handles GET /{resource}/{id}.
func (h *Handler[T, P]) Get(w http.ResponseWriter, r *http.Request) error {
	id, ok := pathID(w, r)
	if !ok {
		return nil
	}
	slog.InfoContext(r.Context(), "getting a record",
		slog.String("resource", h.name), slog.Int64("id", id))

	item, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		return fmt.Errorf("get %s %d: %w", h.name, id, err)
	}
	if item == nil {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}

	return response.WriteJSON(w, http.StatusOK, item)
}

// Create handles POST /{resource}. The response carries the stored
// record and a Location header pointing at it.
func (h *Handler[T, P]) Create(w http.ResponseWriter, r *http.Request) error {
	slog.InfoContext(r.Context(), "creating a record", slog.String("resource", h.name))

	item, ok := h.decode(w, r)
	if !ok {
		return nil
	}

	created, err := h.svc.Create(r.Context(), item)
	if err != nil {
		return fmt.Errorf("create %s: %w", h.name, err)
	}

	id := P(&created).Identity()
	slog.InfoContext(r.Context(), "record created",
		slog.String("resource", h.name), slog.Int64("id", id))

	w.Header().Set("Location", fmt.Sprintf("/%s/%d", h.name, id))
	return response.WriteJSON(w, http.StatusCreated, created)
}

// Update handles PUT /{resource}/{id}. The body must carry the same id
// as the path; the whole record is replaced.
func (h *Handler[T, P]) Update(w http.ResponseWriter, r *http.Request) error {
	id, ok := pathID(w, r)
	if !ok {
		return nil
	}
	slog.InfoContext(r.Context(), "updating a record",
		slog.String("resource", h.name), slog.Int64("id", id))

	item, ok := h.decode(w, r)
	if !ok {
		return nil
	}

	updated, err := h.svc.Update(r.Context(), id, item)
	switch {
	case errors.Is(err, service.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		return nil
	case err != nil:
		return fmt.Errorf("update %s %d: %w", h.name, id, err)
	case !updated:
		return response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("id in body does not match id in path")))
	}

	slog.InfoContext(r.Context(), "record updated",
		slog.String("resource", h.name), slog.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Delete handles DELETE /{resource}/{id}.
func (h *Handler[T, P]) Delete(w http.ResponseWriter, r *http.Request) error {
	id, ok := pathID(w, r)
	if !ok {
		return nil
	}
	slog.InfoContext(r.Context(), "deleting a record",
		slog.String("resource", h.name), slog.Int64("id", id))

	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", h.name, id, err)
	}
	if !deleted {
		w.WriteHeader(http.StatusNotFound)
		return nil
	}

	slog.InfoContext(r.Context(), "record deleted",
		slog.String("resource", h.name), slog.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// decode reads and validates the request body. On failure it has already
// written a 400 or 422 response.
func (h *Handler[T, P]) decode(w http.ResponseWriter, r *http.Request) (T, bool) {
	var item T

	err := json.NewDecoder(r.Body).Decode(&item)
	if errors.Is(err, io.EOF) {
		_ = response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return item, false
	}
	if err != nil {
		_ = response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return item, false
	}

	if err := h.validate.Struct(item); err != nil {
		problem, ok := response.ValidationError(err)
		if !ok {
			// InvalidValidationError: T is not a struct. A programming
			// error, not a client one.
			panic(err)
		}
		_ = response.WriteJSON(w, http.StatusUnprocessableEntity, problem)
		return item, false
	}

	return item, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		_ = response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}
