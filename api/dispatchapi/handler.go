// Package dispatchapi exposes the dispatcher over HTTP.
package dispatchapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wassel-delivery/dispatch/core/dispatch"
	"github.com/wassel-delivery/dispatch/core/model"
)

// DispatchRequest is the POST /api/dispatch body. Either OrderID referencing
// an order known to the order provider, or an inline Order with its candidate
// Drivers.
type DispatchRequest struct {
	OrderID   string         `json:"order_id,omitempty"`
	Order     *model.Order   `json:"order,omitempty"`
	Drivers   []model.Driver `json:"drivers,omitempty"`
	Algorithm string         `json:"algorithm,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Queued bool   `json:"queued,omitempty"`
}

// NewDispatchHandler returns an HTTP handler accepting dispatch requests via
// POST /api/dispatch. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewDispatchHandler(d *dispatch.Dispatcher, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req DispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", false)
			return
		}

		var (
			a   model.Assignment
			err error
		)
		switch {
		case req.OrderID != "":
			a, err = d.DispatchOrder(r.Context(), req.OrderID, req.Algorithm)
		case req.Order != nil:
			a, err = d.Dispatch(r.Context(), *req.Order, req.Drivers, req.Algorithm)
		default:
			writeError(w, http.StatusBadRequest, "order_id or order is required", false)
			return
		}
		if err != nil {
			writeDispatchError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(a); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// NewAnalyticsHandler returns an HTTP handler exposing the analytics snapshot
// via GET /api/dispatch/analytics.
func NewAnalyticsHandler(d *dispatch.Dispatcher, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(d.Analytics()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// NewMux mounts the dispatch and analytics handlers on a fresh ServeMux.
func NewMux(d *dispatch.Dispatcher, token string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/dispatch", NewDispatchHandler(d, token))
	mux.Handle("/api/dispatch/analytics", NewAnalyticsHandler(d, token))
	return mux
}

func authorized(r *http.Request, token string) bool {
	if token == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+token
}

func writeDispatchError(w http.ResponseWriter, err error) {
	var perr *dispatch.ProviderError
	switch {
	case errors.Is(err, dispatch.ErrInvalidDispatchInput):
		writeError(w, http.StatusBadRequest, err.Error(), false)
	case errors.Is(err, dispatch.ErrNoDriverAvailable):
		// The order is queued for retry; the caller polls or listens on MQTT.
		writeError(w, http.StatusServiceUnavailable, err.Error(), true)
	case errors.As(err, &perr):
		writeError(w, http.StatusBadGateway, err.Error(), false)
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), false)
	}
}

func writeError(w http.ResponseWriter, code int, msg string, queued bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, Queued: queued})
}
