package response

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CodeValidation        = "validation_error"
	CodeNotFound          = "not_found"
	CodeRateLimited       = "rate_limited"
	CodeStockExhausted    = "stock_exhausted"
	CodeConflict          = "conflict"
	CodeUnauthorized      = "unauthorized"
	CodePermissionDenied  = "permission_denied"
	CodeInternal          = "backend_error"
	CodeWrongCredentials  = "wrong_credentials"
	CodeInvalidTransition = "invalid_transition"
)

// Err is the JSON body of every failed request.
type Err struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"`

	StatusText        string `json:"status"`
	Code              string `json:"code"`
	ErrorText         string `json:"error,omitempty"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
	Details           any    `json:"details,omitempty"`
}

func (e *Err) Error() string {
	return fmt.Sprintf("%d %s: %v", e.HTTPStatusCode, e.Code, e.Err)
}

// WithDetails attaches a payload the client needs to recover, such as refreshed stock.
func (e *Err) WithDetails(details any) *Err {
	e.Details = details
	return e
}

// RenderErr aborts the request with e. Server side failures are logged and
// their cause is kept out of the response.
func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.Error(e.Err),
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
		)
	}
	if e.RetryAfterSeconds > 0 {
		ctx.Header("Retry-After", strconv.Itoa(e.RetryAfterSeconds))
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func newErr(status int, code string, err error) *Err {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}

	return &Err{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
		Code:           code,
		ErrorText:      err.Error(),
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, CodeValidation, err)
}

func ErrNotFound(kind, field string, value any) *Err {
	return newErr(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s with %s %v not found", kind, field, value))
}

func ErrResourceNotFound(err error) *Err {
	return newErr(http.StatusNotFound, CodeNotFound, err)
}

func ErrWrongCredentials(err error) *Err {
	return newErr(http.StatusUnauthorized, CodeWrongCredentials, err)
}

func ErrUnauthorized(err error) *Err {
	return newErr(http.StatusUnauthorized, CodeUnauthorized, err)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, CodePermissionDenied, err)
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, CodeConflict, err)
}

func ErrInvalidTransition(err error) *Err {
	return newErr(http.StatusConflict, CodeInvalidTransition, err)
}

func ErrStockExhausted(err error) *Err {
	return newErr(http.StatusConflict, CodeStockExhausted, err)
}

// ErrTooManyRequests reports the cooldown rounded up to whole seconds.
func ErrTooManyRequests(err error, retryAfter time.Duration) *Err {
	e := newErr(http.StatusTooManyRequests, CodeRateLimited, err)
	e.RetryAfterSeconds = int(math.Ceil(retryAfter.Seconds()))

	return e
}

func ErrInternalServerError(err error) *Err {
	e := newErr(http.StatusInternalServerError, CodeInternal, err)
	e.ErrorText = "something went wrong, please retry"

	return e
}
