package reportshandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/s6816011857053-star/on-boarding/internal/domain/auth"
	"github.com/s6816011857053-star/on-boarding/internal/domain/onboarding"
	"github.com/s6816011857053-star/on-boarding/internal/transport/http/api"
	"github.com/s6816011857053-star/on-boarding/internal/transport/http/middleware"
	"github.com/s6816011857053-star/on-boarding/internal/transport/http/shared"
)

type Handler struct {
	Service *onboarding.Service
}

func NewHandler(service *onboarding.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead)).Get("/summary", h.handleSummary)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetViewer(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	query := r.URL.Query()
	filter := onboarding.ReportFilter{
		Department: strings.TrimSpace(query.Get("department")),
		Branch:     strings.TrimSpace(query.Get("branch")),
		Position:   strings.TrimSpace(query.Get("position")),
	}
	if filter.Position != "" && !onboarding.ValidPosition(filter.Position) {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "position", Reason: "must be a known position"}})
		return
	}

	summary, err := h.Service.ReportSummary(r.Context(), user, filter)
	if err != nil {
		shared.FailDomain(w, err, requestID)
		return
	}
	api.Success(w, summary, requestID)
}
