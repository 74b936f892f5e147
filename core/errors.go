package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	RetentionErrorBadInput         = "RETENTION_BAD_INPUT"
	RetentionErrorStoreUnavailable = "RETENTION_STORE_UNAVAILABLE"
	RetentionErrorAccountSkipped   = "RETENTION_ACCOUNT_SKIPPED"
	RetentionErrorCapReached       = "RETENTION_CAP_REACHED"
	RetentionErrorNotifyFailed     = "RETENTION_NOTIFY_FAILED"
	RetentionErrorInternal         = "RETENTION_INTERNAL_ERROR"
)

func retentionErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureRetentionErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "driver: bad connection"),
		strings.Contains(msg, "unreachable"):
		return newRetentionError(err.Error(), goerrors.CategoryOperation, RetentionErrorStoreUnavailable)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must be"):
		return newRetentionError(err.Error(), goerrors.CategoryBadInput, RetentionErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureRetentionErrorEnvelope(mapped)
}

func newRetentionError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureRetentionErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureRetentionErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = retentionHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultRetentionTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultRetentionTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return RetentionErrorBadInput
	case goerrors.CategoryOperation:
		return RetentionErrorStoreUnavailable
	default:
		return RetentionErrorInternal
	}
}

func retentionHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryOperation:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
