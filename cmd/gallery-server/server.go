package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/photo-gallery-client/pkg/client"
	"github.com/Sternrassler/photo-gallery-client/pkg/logging"
	"github.com/Sternrassler/photo-gallery-client/pkg/metrics"
	"github.com/Sternrassler/photo-gallery-client/pkg/pagination"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// stateResponse is the JSON view of the List State.
type stateResponse struct {
	pagination.State
	Phase      pagination.Phase `json:"phase"`
	Error      string           `json:"error,omitempty"`
	ErrorClass string           `json:"error_class,omitempty"`
}

type errorResponse struct {
	Error      string `json:"error"`
	ErrorClass string `json:"error_class,omitempty"`
}

func newRouter(ctrl *pagination.Controller) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/photos", func(r chi.Router) {
		r.Get("/", listStateHandler(ctrl))
		r.Post("/next", loadNextHandler(ctrl))
		r.Post("/reset", resetHandler(ctrl))
		r.Get("/{id}", photoDetailHandler(ctrl))
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func listStateHandler(ctrl *pagination.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeState(w, http.StatusOK, ctrl.State())
	}
}

func loadNextHandler(ctrl *pagination.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// A started fetch runs to completion even if this caller goes away.
		ctx := context.WithoutCancel(r.Context())

		if !ctrl.LoadNextPage(ctx) {
			writeState(w, http.StatusConflict, ctrl.State())
			return
		}
		writeState(w, http.StatusOK, ctrl.State())
	}
}

func resetHandler(ctrl *pagination.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ctrl.Reset() {
			writeState(w, http.StatusConflict, ctrl.State())
			return
		}
		writeState(w, http.StatusOK, ctrl.State())
	}
}

func photoDetailHandler(ctrl *pagination.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "photo id must be a positive integer"})
			return
		}

		photo, err := ctrl.LoadPhotoDetail(r.Context(), id)
		if err != nil {
			writeJSON(w, statusForError(err), errorResponse{
				Error:      err.Error(),
				ErrorClass: string(client.ClassOf(err)),
			})
			return
		}

		writeJSON(w, http.StatusOK, photo)
	}
}

// statusForError maps photo API failures onto gateway responses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, client.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, client.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeState(w http.ResponseWriter, status int, st pagination.State) {
	resp := stateResponse{State: st, Phase: st.Phase()}
	if st.Err != nil {
		resp.Error = st.Err.Error()
		resp.ErrorClass = string(client.ClassOf(st.Err))
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := logging.NewLogger(logging.ComponentServer)
		logger.Warn().Err(err).Msg("Failed to write response")
	}
}

// requestLogger logs one line per request with zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger := logging.NewLogger(logging.ComponentServer)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("Request handled")
	})
}
