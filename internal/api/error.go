package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Message string `json:"error"`
}

var (
	InternalServerError = ErrorResponse{"Internal server error"} //nolint:gochecknoglobals // this is a constant response for internal server error
	BadRequestError     = ErrorResponse{"Bad request"}           //nolint:gochecknoglobals // this is a constant response for bad request
	NotFoundError       = ErrorResponse{"Not found"}             //nolint:gochecknoglobals // this is a constant response for not found
	ForbiddenError      = ErrorResponse{"Forbidden"}             //nolint:gochecknoglobals // this is a constant response for forbidden access
	UnauthorizedError   = ErrorResponse{"Unauthorized"}          //nolint:gochecknoglobals // this is a constant response for unauthorized access
)

//nolint:gocognit // no more changes are needed
func HTTPErrorHandler(log *slog.Logger) func(err error, c echo.Context) {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var echoError *echo.HTTPError
		if !errors.As(err, &echoError) {
			log.ErrorContext(c.Request().Context(), "failed to process request", "error", err)
			if err := c.JSON(http.StatusInternalServerError, InternalServerError); err != nil { //nolint:govet // ignore shadow declaration
				log.ErrorContext(c.Request().Context(), "failed to write error response", "error", err)
			}
			return
		}

		if echoError.Code >= http.StatusInternalServerError {
			log.ErrorContext(c.Request().Context(), "failed to process request", "error", err)
		} else {
			log.DebugContext(c.Request().Context(), "request rejected", "status", echoError.Code, "error", err)
		}

		if message, ok := echoError.Message.(string); ok {
			if message == "" {
				message = http.StatusText(echoError.Code)
			}
			if echoError.Code == http.StatusInternalServerError {
				message = InternalServerError.Message
			}
			if err := c.JSON(echoError.Code, ErrorResponse{Message: message}); err != nil { //nolint:govet // ignore shadow declaration
				log.ErrorContext(c.Request().Context(), "failed to write error response", "error", err)
			}

			return
		}

		if bytes, err := json.Marshal(echoError.Message); err != nil { //nolint:govet // ignore shadow declaration
			log.ErrorContext(c.Request().Context(), "failed to marshal error message", "error", err)
			if err := c.JSON(echoError.Code, InternalServerError); err != nil { //nolint:govet // ignore shadow declaration
				log.ErrorContext(c.Request().Context(), "failed to write error response", "error", err)
			}
		} else {
			c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if err := c.String(echoError.Code, string(bytes)); err != nil { //nolint:govet // ignore shadow declaration
				log.ErrorContext(c.Request().Context(), "failed to write error response", "error", err)
			}
		}
	}
}

// Validator plugs go-playground/validator into echo. Failures are reported
// with the json names of the offending fields.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0] //nolint:mnd // name and options
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(field.Tag.Get("query"), ",", 2)[0] //nolint:mnd // name and options
		}
		return name
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return echo.NewHTTPError(http.StatusBadRequest, BadRequestError.Message).SetInternal(err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		if fe.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		messages = append(messages, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
	}
	return echo.NewHTTPError(http.StatusBadRequest, strings.Join(messages, "; ")).SetInternal(err)
}
