// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/smartdish/accounts/internal/account"
	"github.com/smartdish/accounts/pkg/errutil"
)

// writeError maps a domain error onto an HTTP status and a JSON body. The
// body carries the sentinel message for client-caused failures and a fixed
// generic message for everything else; internals only ever reach the log.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		errutil.LogError(logger, "request failed", err)
	}
	writeJSON(w, logger, status, errorResponse{Error: msg})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, account.ErrAlreadyExists):
		return http.StatusConflict, account.ErrAlreadyExists.Error()
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized, account.ErrInvalidCredentials.Error()
	case errors.Is(err, account.ErrInvalidOrExpiredToken):
		return http.StatusUnauthorized, account.ErrInvalidOrExpiredToken.Error()
	case errors.Is(err, account.ErrNotFound):
		return http.StatusNotFound, account.ErrNotFound.Error()
	case errors.Is(err, account.ErrInvalidOperation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, account.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("writing response body failed", "error", err)
	}
}
