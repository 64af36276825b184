package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/filmorate/internal/middleware"
	"github.com/iliyamo/filmorate/internal/model"
)

// Error categories returned in ErrorResponse.Error.
const (
	CategoryNotFound    = "Объект не найден"
	CategoryValidation  = "Ошибка валидации"
	CategoryConflict    = "Конфликт данных"
	CategoryBadRequest  = "Некорректные параметры запроса"
	CategoryInternal    = "Внутренняя ошибка сервера"
	internalDescription = "Произошла непредвиденная ошибка"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

// ErrorHandler renders domain errors and echo errors as ErrorResponse.
// Internal errors are logged with their cause and answered with a generic
// description.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := errorResponse(err)

		l := middleware.Logger(c, log)
		if status >= http.StatusInternalServerError {
			l.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		} else {
			l.Warn().Str("error", body.Error).Str("description", body.Description).Int("status", status).Msg("request rejected")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			l.Error().Err(err).Msg("failed to write error response")
		}
	}
}

func errorResponse(err error) (int, ErrorResponse) {
	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		switch {
		case errors.Is(err, model.ErrNotFound):
			return http.StatusNotFound, ErrorResponse{CategoryNotFound, domainErr.Message}
		case errors.Is(err, model.ErrValidation):
			return http.StatusBadRequest, ErrorResponse{CategoryValidation, domainErr.Message}
		case errors.Is(err, model.ErrAlreadyExists):
			return http.StatusConflict, ErrorResponse{CategoryConflict, domainErr.Message}
		case errors.Is(err, model.ErrBadRequest):
			return http.StatusBadRequest, ErrorResponse{CategoryBadRequest, domainErr.Message}
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprint(he.Message)
		switch {
		case he.Code == http.StatusNotFound:
			return he.Code, ErrorResponse{CategoryNotFound, "Ресурс не найден"}
		case he.Code == http.StatusMethodNotAllowed:
			return he.Code, ErrorResponse{CategoryBadRequest, "Метод не поддерживается"}
		case he.Code < http.StatusInternalServerError:
			return he.Code, ErrorResponse{CategoryBadRequest, msg}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{CategoryInternal, internalDescription}
}
