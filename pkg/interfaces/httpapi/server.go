// Package httpapi exposes budget computation and line edits over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/presupuesto/pkg/application/services"
	"github.com/vsinha/presupuesto/pkg/application/services/costing"
	"github.com/vsinha/presupuesto/pkg/domain/entities"
	"github.com/vsinha/presupuesto/pkg/domain/repositories"
)

// Server serves the budget API
type Server struct {
	service *services.BudgetService
	logger  *zap.Logger
}

// NewServer creates an API server over a budget service
func NewServer(service *services.BudgetService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{service: service, logger: logger.Named("http")}
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/budgets", s.handleListBudgets)
	r.Route("/budgets/{budgetID}", func(r chi.Router) {
		r.Get("/costs", s.handleCosts)
		r.Get("/validation", s.handleValidate)
		r.Put("/partidas/{partidaID}/apu", s.handleYieldShift)
		r.Route("/partidas/{partidaID}/lines/{lineID}", func(r chi.Router) {
			r.Put("/price", s.handleLinePrice)
			r.Put("/override", s.handleLineOverride)
			r.Put("/crew", s.handleLineCrew)
			r.Put("/quantity", s.handleLineQuantity)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight requests
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func budgetID(r *http.Request) entities.BudgetID {
	return entities.BudgetID(chi.URLParam(r, "budgetID"))
}

func lineRef(r *http.Request) costing.LineRef {
	return costing.LineRef{
		PartidaID: entities.PartidaID(chi.URLParam(r, "partidaID")),
		LineID:    entities.LineID(chi.URLParam(r, "lineID")),
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.service.ListBudgets(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCosts(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Compute(r.Context(), budgetID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type validationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Validate(r.Context(), budgetID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validationResponse{Valid: result.Valid(), Errors: result.Errors})
}

type priceRequest struct {
	Price *decimal.Decimal `json:"price"`
}

func (s *Server) handleLinePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Price == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "price is required"})
		return
	}
	result, err := s.service.EditLinePrice(r.Context(), budgetID(r), lineRef(r), *req.Price)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type overrideRequest struct {
	Override bool            `json:"override"`
	Price    decimal.Decimal `json:"price"`
}

func (s *Server) handleLineOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.service.SetLineOverride(r.Context(), budgetID(r), lineRef(r), req.Override, req.Price)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type crewRequest struct {
	CrewSize *decimal.Decimal `json:"crew_size"`
}

func (s *Server) handleLineCrew(w http.ResponseWriter, r *http.Request) {
	var req crewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CrewSize == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "crew_size is required"})
		return
	}
	result, err := s.service.EditLineCrew(r.Context(), budgetID(r), lineRef(r), *req.CrewSize)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type quantityRequest struct {
	Quantity *decimal.Decimal `json:"quantity"`
}

func (s *Server) handleLineQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quantity is required"})
		return
	}
	result, err := s.service.EditLineQuantity(r.Context(), budgetID(r), lineRef(r), *req.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type yieldShiftRequest struct {
	Yield       decimal.Decimal `json:"yield"`
	ShiftLength decimal.Decimal `json:"shift_length"`
}

func (s *Server) handleYieldShift(w http.ResponseWriter, r *http.Request) {
	var req yieldShiftRequest
	if !decodeBody(w, r, &req) {
		return
	}
	partidaID := entities.PartidaID(chi.URLParam(r, "partidaID"))
	result, err := s.service.EditYieldShift(r.Context(), budgetID(r), partidaID, req.Yield, req.ShiftLength)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type errorResponse struct {
	Error string `json:"error"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, repositories.ErrNotFound),
		errors.Is(err, costing.ErrAPUNotFound),
		errors.Is(err, costing.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, costing.ErrDerivedPrice),
		errors.Is(err, costing.ErrNotCrewDriven):
		return http.StatusUnprocessableEntity
	case errors.Is(err, costing.ErrNegativeValue):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
