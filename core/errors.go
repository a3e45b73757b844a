package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorRequestFailed     = "ILS_REQUEST_FAILED"
	ErrorAuthTokenFailed   = "ILS_AUTH_TOKEN_FAILED"
	ErrorConfigInvalid     = "ILS_CONFIG_INVALID"
	ErrorDriverNotFound    = "ILS_DRIVER_NOT_FOUND"
	ErrorCapabilityMissing = "ILS_CAPABILITY_MISSING"
	ErrorBadInput          = "ILS_BAD_INPUT"
	ErrorInternal          = "ILS_INTERNAL_ERROR"
)

const (
	MessageSendFailure      = "ils: send failure"
	MessageUnexpectedStatus = "ils: unexpected status"
	MessageTokenRequest     = "ils: auth token request failed"
	MessageTokenStatus      = "ils: auth token bad status code"
	MessageTokenEmptyData   = "ils: auth token empty data"
)

// NewRequestError carries only a generic message; the transport detail is
// expected to be logged by the caller.
func NewRequestError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(ErrorRequestFailed)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func NewAuthTokenError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorAuthTokenFailed)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func NewConfigError(message string, fields ...goerrors.FieldError) *goerrors.Error {
	return goerrors.NewValidation(message, fields...).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorConfigInvalid).
		WithSeverity(goerrors.SeverityError)
}

func NewDriverNotFoundError(name string) *goerrors.Error {
	return goerrors.New("ils: driver not registered: "+strings.TrimSpace(name), goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(ErrorDriverNotFound).
		WithMetadata(map[string]any{"driver": strings.TrimSpace(name)})
}

func NewCapabilityError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryOperation).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorCapabilityMissing)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func NewInternalError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorInternal)
}

func IsRequestError(err error) bool {
	return hasTextCode(err, ErrorRequestFailed)
}

func IsAuthTokenError(err error) bool {
	return hasTextCode(err, ErrorAuthTokenFailed)
}

func IsConfigError(err error) bool {
	return hasTextCode(err, ErrorConfigInvalid)
}

func IsDriverNotFound(err error) bool {
	return hasTextCode(err, ErrorDriverNotFound)
}

func IsCapabilityError(err error) bool {
	return hasTextCode(err, ErrorCapabilityMissing)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}
