package errors

import (
	"net/http"
	"reflect"

	"github.com/sirupsen/logrus"
)

// Machine-readable error codes returned alongside HTTP errors. Clients branch
// on these, so values are part of the API contract and must stay stable.
const (
	CodeValidationError       = "VALIDATION_ERROR"
	CodeCardNotFound          = "CARD_NOT_FOUND"
	CodeCardPasswordRequired  = "CARD_PASSWORD_REQUIRED"
	CodeCardPasswordIncorrect = "CARD_PASSWORD_INCORRECT"
	CodeCardAlreadyRedeemed   = "CARD_ALREADY_REDEEMED"
	CodeCardNotActive         = "CARD_NOT_ACTIVE"
	CodeCardExpired           = "CARD_EXPIRED"
	CodeTreasuryNotConfigured = "TREASURY_NOT_CONFIGURED"
	CodeAutoSendNotSupported  = "AUTO_SEND_NOT_SUPPORTED"
	CodeTreasuryCheckFailed   = "TREASURY_CHECK_FAILED"
	CodeTreasuryInsufficient  = "TREASURY_INSUFFICIENT"
	CodeTreasurySendFailed    = "TREASURY_SEND_FAILED"
	CodeTreasurySendError     = "TREASURY_SEND_ERROR"
	CodeQuoteFailed           = "QUOTE_FAILED"
	CodeOrderFailed           = "ORDER_FAILED"
)

type AppError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

// WithCode attaches a machine-readable error code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

func NewAppError(statusCode int, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
	}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func NewUnauthorizedError(message ...string) *AppError {
	if len(message) > 0 {
		return NewAppError(http.StatusUnauthorized, message[0])
	}
	return NewAppError(http.StatusUnauthorized, "Unauthorized")
}

func NewForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, message)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, message)
}

func NewTooManyRequestsError(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, message)
}

func NewServiceUnavailableError(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message)
}

func NewInternalServerError(originalError error, message string) *AppError {
	logrus.Errorf("[%s] %s", reflect.TypeOf(originalError).String(), originalError)
	return NewAppError(http.StatusInternalServerError, message)
}
