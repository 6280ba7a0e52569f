// Package httpapi exposes the building store over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"citycore/internal/core"
	"citycore/pkg/domain"
)

const maxBodyBytes = 1 << 20

// Store is the subset of *core.Store served by the handler.
type Store interface {
	Buildings() domain.Buildings
	Building(addr string) (domain.Building, bool)
	Elevator(addr, idx string) (domain.Elevator, bool)
	AddBuildings(ctx context.Context, buildings domain.Buildings) error
	AddElevators(ctx context.Context, elevators domain.Elevators, addr string) error
	UpdateBuildings(ctx context.Context, buildings domain.Buildings) error
	UpdateBuilding(ctx context.Context, in domain.Building, addr string) error
	UpdateElevator(ctx context.Context, in domain.Elevator, addr, idx string) error
	AddOrUpdateBuildings(ctx context.Context, buildings domain.Buildings) error
	AddOrUpdateElevators(ctx context.Context, elevators domain.Elevators, addr string) error
	DeleteBuildings(ctx context.Context) error
	DeleteBuilding(ctx context.Context, addr string) error
	DeleteElevator(ctx context.Context, addr, idx string) error
	GoToFloor(ctx context.Context, addr, idx string, floor int) error
}

var _ Store = (*core.Store)(nil)

// Handler routes building, elevator and operational endpoints.
type Handler struct {
	Store   Store
	Metrics http.Handler
}

// NewHandler constructs a handler over store. metrics serves /metrics when
// non-nil.
func NewHandler(store Store, metrics http.Handler) *Handler {
	return &Handler{Store: store, Metrics: metrics}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusInternalServerError, "store not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.EscapedPath(), "/")
	switch {
	case path == "":
		h.handleBuildings(w, r)
	case path == "/healthz":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	case path == "/metrics":
		if h.Metrics == nil {
			http.NotFound(w, r)
			return
		}
		h.Metrics.ServeHTTP(w, r)
	case strings.HasPrefix(path, "/building/"):
		h.handleBuildingTree(w, r, strings.TrimPrefix(path, "/building/"))
	default:
		writeError(w, http.StatusNotFound, "endpoint not found")
	}
}

func (h *Handler) handleBuildingTree(w http.ResponseWriter, r *http.Request, remainder string) {
	segments := strings.Split(remainder, "/")
	for i, seg := range segments {
		unescaped, err := url.PathUnescape(seg)
		if err != nil || unescaped == "" {
			writeError(w, http.StatusNotFound, "endpoint not found")
			return
		}
		segments[i] = unescaped
	}
	switch {
	case len(segments) == 1:
		h.handleBuilding(w, r, segments[0])
	case len(segments) == 3 && segments[1] == "elevator":
		h.handleElevator(w, r, segments[0], segments[2])
	default:
		writeError(w, http.StatusNotFound, "endpoint not found")
	}
}

func (h *Handler) handleBuildings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.Store.Buildings())
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		raw, ok := decodeBody(w, r)
		if !ok {
			return
		}
		if !domain.IsValidBuildings(raw) {
			writeError(w, http.StatusBadRequest, "invalid buildings payload")
			return
		}
		buildings, err := domain.ToBuildings(raw)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		switch r.Method {
		case http.MethodPost:
			respond(w, http.StatusCreated, h.Store.AddBuildings(ctx, buildings))
		case http.MethodPut:
			respond(w, http.StatusOK, h.Store.UpdateBuildings(ctx, buildings))
		default:
			respond(w, http.StatusOK, h.Store.AddOrUpdateBuildings(ctx, buildings))
		}
	case http.MethodDelete:
		respond(w, http.StatusOK, h.Store.DeleteBuildings(ctx))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleBuilding(w http.ResponseWriter, r *http.Request, addr string) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		building, ok := h.Store.Building(addr)
		if !ok {
			writeError(w, http.StatusBadRequest, "building not found")
			return
		}
		writeJSON(w, http.StatusOK, building)
	case http.MethodPost, http.MethodPatch:
		raw, ok := decodeBody(w, r)
		if !ok {
			return
		}
		building, exists := h.Store.Building(addr)
		if !exists {
			writeStoreError(w, domain.ErrBuildingNotFound)
			return
		}
		if !domain.IsValidElevators(raw, building) {
			writeError(w, http.StatusBadRequest, "invalid elevators payload")
			return
		}
		elevators, err := domain.ToElevators(raw)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if r.Method == http.MethodPost {
			respond(w, http.StatusCreated, h.Store.AddElevators(ctx, elevators, addr))
			return
		}
		respond(w, http.StatusOK, h.Store.AddOrUpdateElevators(ctx, elevators, addr))
	case http.MethodPut:
		raw, ok := decodeBody(w, r)
		if !ok {
			return
		}
		if !domain.IsValidBuilding(raw) {
			writeError(w, http.StatusBadRequest, "invalid building payload")
			return
		}
		building, err := domain.ToBuilding(raw)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		respond(w, http.StatusOK, h.Store.UpdateBuilding(ctx, building, addr))
	case http.MethodDelete:
		respond(w, http.StatusOK, h.Store.DeleteBuilding(ctx, addr))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleElevator(w http.ResponseWriter, r *http.Request, addr, idx string) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		elevator, ok := h.Store.Elevator(addr, idx)
		if !ok {
			writeError(w, http.StatusBadRequest, "elevator not found")
			return
		}
		writeJSON(w, http.StatusOK, elevator)
	case http.MethodPost:
		raw, ok := decodeBody(w, r)
		if !ok {
			return
		}
		building, exists := h.Store.Building(addr)
		if !exists {
			writeStoreError(w, domain.ErrBuildingNotFound)
			return
		}
		body, _ := raw.(map[string]any)
		floor, isNumber := body["floor"].(float64)
		if !isNumber || !domain.IsValidFloor(floor, building) {
			writeError(w, http.StatusBadRequest, "invalid floor")
			return
		}
		respond(w, http.StatusOK, h.Store.GoToFloor(ctx, addr, idx, int(floor)))
	case http.MethodPut:
		raw, ok := decodeBody(w, r)
		if !ok {
			return
		}
		building, exists := h.Store.Building(addr)
		if !exists {
			writeStoreError(w, domain.ErrBuildingNotFound)
			return
		}
		if !domain.IsValidElevator(raw, building) {
			writeError(w, http.StatusBadRequest, "invalid elevator payload")
			return
		}
		elevator, err := domain.ToElevator(raw)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		respond(w, http.StatusOK, h.Store.UpdateElevator(ctx, elevator, addr, idx))
	case http.MethodDelete:
		respond(w, http.StatusOK, h.Store.DeleteElevator(ctx, addr, idx))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// decodeBody reads a single JSON document into generic values for the
// validator. An empty body decodes to nil and is left for the validator to
// reject; anything after the document is malformed.
func decodeBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	var raw any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, true
		}
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return nil, false
	}
	var trailing any
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return nil, false
	}
	return raw, true
}

func respond(w http.ResponseWriter, status int, err error) {
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, status, map[string]any{"status": http.StatusText(status)})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if domain.IsRejection(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
