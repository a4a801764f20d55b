package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/s6816011857053-star/on-boarding/internal/domain/onboarding"
	"github.com/s6816011857053-star/on-boarding/internal/transport/http/api"
)

// FailDomain maps onboarding errors onto the API envelope.
func FailDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, onboarding.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, onboarding.ErrModuleNotFound):
		api.Fail(w, http.StatusNotFound, "module_not_found", err.Error(), requestID)
	case errors.Is(err, onboarding.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed for this role", requestID)
	case errors.Is(err, onboarding.ErrDuplicateEmployee):
		api.Fail(w, http.StatusConflict, "duplicate_employee", "employee id already exists", requestID)
	case errors.Is(err, onboarding.ErrTrainingIncomplete):
		api.Fail(w, http.StatusConflict, "training_incomplete", "every module must be completed before evaluation", requestID)
	case errors.Is(err, onboarding.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	default:
		slog.Error("request failed", "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}
