package adaptor

import (
	"errors"
	"io"
	"net/http"

	"estate-api/internal/usecase"
	"estate-api/pkg/utils"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Auth *AuthHandler
	User *UserHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth: NewAuthHandler(service.Auth, log),
		User: NewUserHandler(service.User, log),
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := render.DecodeJSON(r.Body, dst); err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// writeServiceError maps a service error onto the response envelope.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var appErr *usecase.AppError
	if !errors.As(err, &appErr) {
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	switch appErr.Kind {
	case usecase.KindNotFound:
		log.Warn(operation+" failed - not found", zap.String("reason", appErr.Message))
		utils.ResponseNotFound(w, appErr.Message)

	case usecase.KindConflict:
		log.Warn(operation+" failed - conflict", zap.String("reason", appErr.Message))
		utils.ResponseConflict(w, appErr.Message)

	case usecase.KindBadRequest:
		log.Warn(operation+" failed - bad request", zap.String("reason", appErr.Message))
		utils.ResponseBadRequest(w, appErr.Message, appErr.Fields)

	case usecase.KindUnauthorized:
		log.Warn(operation+" failed - unauthorized", zap.String("reason", appErr.Message))
		utils.ResponseUnauthorized(w, appErr.Message)

	case usecase.KindForbidden:
		log.Warn(operation+" failed - forbidden", zap.String("reason", appErr.Message))
		utils.ResponseForbidden(w, appErr.Message)

	case usecase.KindTooManyRequests:
		log.Warn(operation+" failed - throttled", zap.String("reason", appErr.Message))
		utils.ResponseTooManyRequests(w, appErr.Message)

	default:
		log.Error("Failed to "+operation, zap.Error(appErr), zap.String("operation", operation))
		utils.ResponseInternalError(w, appErr.Message)
	}
}
