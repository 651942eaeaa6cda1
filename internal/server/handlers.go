package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/agbru/mbcalc/internal/errors"
	"github.com/agbru/mbcalc/internal/logging"
	"github.com/agbru/mbcalc/internal/mandelbrot"
	"github.com/agbru/mbcalc/internal/service"
)

// MaxBodyBytes bounds request bodies. A maximal HP request carries four
// coordinate arrays of a few hundred words each.
const MaxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now().Unix()})
}

func (s *Server) handleRenderers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, RenderersResponse{Renderers: s.service.Renderers()})
}

// handleCanCompute lets a client probe for a live worker before sending it
// row bands.
func (s *Server) handleCanCompute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	opts := s.cfg.ToRenderOptions()
	s.writeJSONResponse(w, http.StatusOK, AvailabilityResponse{Available: true, Width: opts.Width, Workers: opts.Workers})
}

// handleCompute renders a float64 row band described by a LowRequest body.
func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var req mandelbrot.LowRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	grid, err := s.service.RenderRows(ctx, req)
	s.writeGrid(w, "/mb-compute", grid, err, time.Since(start))
}

// handleComputeHP renders a whole fixed-point grid described by a View body,
// using the server's width, workers and quality.
func (s *Server) handleComputeHP(w http.ResponseWriter, r *http.Request) {
	var view mandelbrot.View
	if !s.decodeRequest(w, r, &view) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	grid, err := s.service.RenderHP(ctx, view)
	s.writeGrid(w, "/mb-computeHP", grid, err, time.Since(start))
}

// decodeRequest reads a JSON POST body into dst, writing the error response
// itself and returning false on failure.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", MaxBodyBytes))
			return false
		}
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// statusForError maps a render error to an HTTP status.
func statusForError(err error) int {
	var ve apperrors.ValidationError
	var ce apperrors.ConfigError
	switch {
	case errors.As(err, &ve), errors.As(err, &ce):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRequestTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeGrid(w http.ResponseWriter, route string, grid mandelbrot.Grid, err error, elapsed time.Duration) {
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("render failed", err, logging.String("route", route))
		}
		s.writeErrorResponse(w, status, err.Error())
		return
	}
	s.logger.Debug("render served",
		logging.String("route", route),
		logging.Int("rows", len(grid)),
		logging.Duration("elapsed", elapsed),
	)
	s.writeJSONResponse(w, http.StatusOK, grid)
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{Error: http.StatusText(statusCode), Message: message})
}
