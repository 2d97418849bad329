// Package chi is the REST transport: hand-written handlers on the chi router
// with a sentinel-based domain error mapping.
package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	domprofile "github.com/kailas-cloud/petsearch/internal/domain/profile"
	chatuc "github.com/kailas-cloud/petsearch/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/petsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/petsearch/internal/usecase/search"
)

// ProfileWriter is the transport's slice of the profile store.
type ProfileWriter interface {
	EnsureCustomer(ctx context.Context, id, name string) error
	SavePet(ctx context.Context, customerID string, pet domprofile.Pet) error
}

// Server holds the HTTP handlers.
type Server struct {
	chat          *chatuc.Service
	search        *searchuc.Service
	profiles      ProfileWriter
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	chat *chatuc.Service,
	search *searchuc.Service,
	profiles ProfileWriter,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		chat:          chat,
		search:        search,
		profiles:      profiles,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", s.CreateSession)
		r.Post("/sessions/{id}/messages", s.PostMessage)
		r.Get("/sessions/{id}/context", s.GetContext)
		r.Delete("/sessions/{id}", s.DeleteSession)
		r.Post("/search", s.Search)
		r.Post("/customers/{id}/pets", s.SavePet)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// CreateSession handles POST /v1/sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "customer_id is required")
		return
	}

	if err := s.profiles.EnsureCustomer(r.Context(), req.CustomerID, req.CustomerName); err != nil {
		s.handleDomainError(w, err)
		return
	}

	sess := s.chat.Registry().Create(req.CustomerID)
	writeJSON(w, http.StatusCreated, SessionResponse{
		SessionID:  sess.ID,
		CustomerID: sess.CustomerID,
	})
}

// PostMessage handles POST /v1/sessions/{id}/messages: one chat turn.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "text is required")
		return
	}

	reply, err := s.chat.Turn(r.Context(), sessionID, req.Text, req.Intent.toDomain())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TurnResponse{
		Intent:         intentToResponse(reply.Intent),
		Matches:        matchesToResponse(reply.Matches),
		ContextSummary: reply.ContextSummary,
	})
}

// GetContext handles GET /v1/sessions/{id}/context.
func (s *Server) GetContext(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	sess, err := s.chat.Registry().Get(sessionID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	sess.Lock()
	defer sess.Unlock()

	sc := sess.Context()
	resp := ContextResponse{
		Summary:    sc.Summary(),
		Exclusions: sc.Exclusions(),
	}
	if sp := sc.Species(); sp != nil {
		v := string(*sp)
		resp.Species = &v
	}
	for _, t := range sc.Turns() {
		resp.Turns = append(resp.Turns, TurnEntry{Role: t.Role, Content: t.Content})
	}

	writeJSON(w, http.StatusOK, resp)
}

// DeleteSession handles DELETE /v1/sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	s.chat.Registry().Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// Search handles POST /v1/search: stateless hybrid search without a session.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	matches, err := s.search.Search(r.Context(), req.Intent.toDomain(), req.MaxResults)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := matchesToResponse(matches)
	writeJSON(w, http.StatusOK, SearchResponse{Matches: items, Total: len(items)})
}

// SavePet handles POST /v1/customers/{id}/pets.
func (s *Server) SavePet(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")

	var req PetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "pet name is required")
		return
	}

	if err := s.profiles.SavePet(r.Context(), customerID, req.toDomain()); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
