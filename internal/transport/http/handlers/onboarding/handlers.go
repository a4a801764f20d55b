package onboardinghandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

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
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/", h.handleRegisterEmployee)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/", h.handleGetEmployee)
			r.With(middleware.RequirePermission(auth.PermProgressRead)).Get("/progress", h.handleProgress)
			r.With(middleware.RequirePermission(auth.PermProgressRead)).Get("/progress.pdf", h.handleProgressPDF)
			r.With(middleware.RequirePermission(auth.PermProgressRead)).Get("/dashboard", h.handleDashboard)
			r.With(middleware.RequirePermission(auth.PermTrainingComplete)).Post("/modules/{moduleID}/complete", h.handleCompleteModule)
			r.With(middleware.RequirePermission(auth.PermEvaluationsWrite)).Post("/evaluations", h.handleSubmitEvaluations)
		})
	})
	r.Route("/positions", func(r chi.Router) {
		r.Get("/", h.handleListPositions)
		r.Get("/{position}/modules", h.handleListModules)
	})
}

// viewer is only called behind RequirePermission, which guarantees a user.
func viewer(r *http.Request) auth.User {
	user, _ := middleware.GetViewer(r.Context())
	return user
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employees, err := h.Service.ListEmployees(r.Context(), viewer(r))
	if err != nil {
		shared.FailDomain(w, err, requestID)
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	total := len(employees)
	start := min(page.Offset, total)
	end := min(start+page.Limit, total)
	api.SuccessWithMeta(w, employees[start:end], api.Meta{Total: total, Limit: page.Limit, Offset: page.Offset}, requestID)
}

type registerEmployeeRequest struct {
	EmployeeID       string `json:"employeeId"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Position         string `json:"position"`
	Department       string `json:"department"`
	Branch           string `json:"branch"`
	StartDate        string `json:"startDate"`
	ProbationEndDate string `json:"probationEndDate"`
	TrainerID        string `json:"trainerId"`
	LineManagerID    string `json:"lineManagerId"`
}

func (h *Handler) handleRegisterEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload registerEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Required("firstName", payload.FirstName, "is required")
	v.Required("lastName", payload.LastName, "is required")
	v.Required("position", payload.Position, "is required")
	v.Enum("position", payload.Position, positionValues(), "must be a known position")
	v.Required("department", payload.Department, "is required")
	v.Enum("department", payload.Department, onboarding.Departments, "must be a known department")
	v.Required("branch", payload.Branch, "is required")
	v.Enum("branch", payload.Branch, onboarding.Branches, "must be a known branch")
	startDate, _ := v.Date("startDate", payload.StartDate)
	var probationEnd time.Time
	if payload.ProbationEndDate != "" {
		probationEnd, _ = v.Date("probationEndDate", payload.ProbationEndDate)
		v.DateOrder("startDate", startDate, "probationEndDate", probationEnd)
	}
	if v.Reject(w, requestID) {
		return
	}

	emp, err := h.Service.RegisterEmployee(r.Context(), viewer(r), onboarding.RegisterEmployeeInput{
		EmployeeID:       payload.EmployeeID,
		FirstName:        payload.FirstName,
		LastName:         payload.LastName,
		Position:         canonical(positionValues(), payload.Position),
		Department:       canonical(onboarding.Departments, payload.Department),
		Branch:           canonical(onboarding.Branches, payload.Branch),
		StartDate:        startDate,
		ProbationEndDate: probationEnd,
		TrainerID:        payload.TrainerID,
		LineManagerID:    payload.LineManagerID,
	})
	if err != nil {
		shared.FailDomain(w, err, requestID)
		return
	}
	api.Created(w, emp, requestID)
}

func positionValues() []string {
	summaries := onboarding.Positions()
	values := make([]string, 0, len(summaries))
	for _, summary := range summaries {
		values = append(values, string(summary.Position))
	}
	return values
}

// canonical returns the catalog spelling of a case-insensitively matched value.
func canonical(values []string, value string) string {
	for _, candidate := range values {
		if strings.EqualFold(candidate, strings.TrimSpace(value)) {
			return candidate
		}
	}
	return value
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	emp, err := h.Service.GetEmployee(r.Context(), viewer(r), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.FailDomain(w, err, requestID)
		return
	}
	api.Success(w, emp, requestID)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	progress, err := h.Service.Progress(r.Context(), viewer(r), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.FailDomain(w, err, requestID)
		return
	}
	api.Success(w, progress, requestID)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	dash, err := h.Service.EmployeeDashboard(r.Context(), viewer(r), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.FailDomain(w, err, requestID)
		return
	}
	api.Success(w, dash, requestID)
}

func (h *Handler) handleProgressPDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	dash, err := h.Service.EmployeeDashboard(r.Context(), viewer(r), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.FailDomain(w, err, requestID)
		return
	}

	var buf bytes.Buffer
	if err := onboarding.RenderProgressPDF(&buf, dash, time.Now()); err != nil {
		slog.Error("render progress pdf failed", "employeeId", dash.Employee.EmployeeID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render report", requestID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="progress-`+dash.Employee.EmployeeID+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("write progress pdf failed", "err", err)
	}
}

type completeModuleRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) handleCompleteModule(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload completeModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	record, err := h.Service.CompleteModule(r.Context(), viewer(r), chi.URLParam(r, "employeeID"), chi.URLParam(r, "moduleID"), payload.Notes)
	if err != nil {
		shared.FailDomain(w, err, requestID)
		return
	}
	api.Success(w, record, requestID)
}

type evaluationEntry struct {
	ModuleID string   `json:"moduleId"`
	Score    *float64 `json:"score"`
	Passed   bool     `json:"passed"`
	Comments string   `json:"comments"`
}

type submitEvaluationsRequest struct {
	Evaluations []evaluationEntry `json:"evaluations"`
}

func (h *Handler) handleSubmitEvaluations(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload submitEvaluationsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	if len(payload.Evaluations) == 0 {
		v.Add("evaluations", "must contain at least one entry")
	}
	inputs := make([]onboarding.EvaluationInput, 0, len(payload.Evaluations))
	for i, entry := range payload.Evaluations {
		field := "evaluations[" + strconv.Itoa(i) + "]"
		v.Required(field+".moduleId", entry.ModuleID, "is required")
		if entry.Score == nil {
			v.Add(field+".score", "is required")
			continue
		}
		inputs = append(inputs, onboarding.EvaluationInput{
			ModuleID: entry.ModuleID,
			Score:    *entry.Score,
			Passed:   entry.Passed,
			Comments: entry.Comments,
		})
	}
	if v.Reject(w, requestID) {
		return
	}

	evaluations, err := h.Service.SubmitEvaluations(r.Context(), viewer(r), chi.URLParam(r, "employeeID"), inputs)
	if err != nil {
		shared.FailDomain(w, err, requestID)
		return
	}
	api.Success(w, evaluations, requestID)
}

type positionsResponse struct {
	Positions   []onboarding.PositionSummary `json:"positions"`
	Departments []string                     `json:"departments"`
	Branches    []string                     `json:"branches"`
}

func (h *Handler) handleListPositions(w http.ResponseWriter, r *http.Request) {
	api.Success(w, positionsResponse{
		Positions:   onboarding.Positions(),
		Departments: onboarding.Departments,
		Branches:    onboarding.Branches,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListModules(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	modules, err := h.Service.Modules(r.Context(), onboarding.Position(chi.URLParam(r, "position")))
	if err != nil {
		shared.FailDomain(w, err, requestID)
		return
	}
	api.Success(w, modules, requestID)
}
