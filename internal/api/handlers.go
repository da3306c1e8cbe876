// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/oops"

	"github.com/smartdish/accounts/internal/account"
	"github.com/smartdish/accounts/internal/observability"
	"github.com/smartdish/accounts/internal/token"
)

// SessionVerifier checks a bearer token and returns its claims.
type SessionVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// Handler exposes the account service over HTTP.
type Handler struct {
	svc      *account.Service
	sessions SessionVerifier
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewHandler creates a Handler. metrics may be nil.
func NewHandler(svc *account.Service, sessions SessionVerifier, metrics *observability.Metrics, logger *slog.Logger) (*Handler, error) {
	if svc == nil {
		return nil, oops.Errorf("account service is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session verifier is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Handler{svc: svc, sessions: sessions, metrics: metrics, logger: logger}, nil
}

// Routes builds the full route tree: a public subrouter for registration
// and credential flows, an authenticated one for self-service, and an
// admin-only one for account administration.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(h.logger, h.metrics))

	public := r.PathPrefix("/api/accounts").Subrouter()
	public.HandleFunc("/register", h.handleRegister).Methods(http.MethodPost)
	public.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	public.HandleFunc("/forgot-password", h.handleForgotPassword).Methods(http.MethodPost)
	public.HandleFunc("/reset-password", h.handleResetPassword).Methods(http.MethodPost)

	self := r.PathPrefix("/api/accounts/me").Subrouter()
	self.Use(h.authMiddleware)
	self.HandleFunc("", h.handleGetSelf).Methods(http.MethodGet)
	self.HandleFunc("", h.handleUpdateSelf).Methods(http.MethodPut)
	self.HandleFunc("", h.handleDeleteSelf).Methods(http.MethodDelete)
	self.HandleFunc("/preferences", h.handleGetPreferences).Methods(http.MethodGet)
	self.HandleFunc("/preferences", h.handleUpdatePreferences).Methods(http.MethodPut)
	self.HandleFunc("/export", h.handleExport).Methods(http.MethodGet)

	admin := r.PathPrefix("/api/accounts").Subrouter()
	admin.Use(h.authMiddleware, h.adminMiddleware)
	admin.HandleFunc("", h.handleList).Methods(http.MethodGet)
	admin.HandleFunc("/{id:[0-9]+}", h.handleGet).Methods(http.MethodGet)
	admin.HandleFunc("/{id:[0-9]+}", h.handleUpdate).Methods(http.MethodPut)
	admin.HandleFunc("/{id:[0-9]+}", h.handleDelete).Methods(http.MethodDelete)

	return r
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	acct, err := h.svc.Register(r.Context(), account.RegisterInput{
		Email:       req.Email,
		Secret:      req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DietIDs:     req.DietIDs,
		AllergenIDs: req.AllergenIDs,
		CuisineIDs:  req.CuisineIDs,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, toAccountResponse(acct))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	tok, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordLogin("failure")
		writeError(w, h.logger, err)
		return
	}
	h.metrics.RecordLogin("success")
	writeJSON(w, h.logger, http.StatusOK, loginResponse{Token: tok})
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "email is required"})
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.metrics.RecordResetRequest()
	writeJSON(w, h.logger, http.StatusAccepted, statusResponse{Status: "accepted"})
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "token and newPassword are required"})
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, statusResponse{Status: "password updated"})
}

func (h *Handler) handleGetSelf(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.selfAccount(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toAccountResponse(acct))
}

func (h *Handler) handleUpdateSelf(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.selfAccount(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.svc.Update(r.Context(), acct.ID, req.toInput())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toAccountResponse(updated))
}

func (h *Handler) handleDeleteSelf(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.selfAccount(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), acct.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.selfAccount(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toPreferencesResponse(acct))
}

func (h *Handler) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.selfAccount(w, r)
	if !ok {
		return
	}

	var req preferencesPayload
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.svc.Update(r.Context(), acct.ID, account.UpdateInput{
		DietIDs:     req.DietIDs,
		AllergenIDs: req.AllergenIDs,
		CuisineIDs:  req.CuisineIDs,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toPreferencesResponse(updated))
}

// handleExport returns the caller's complete account data as a JSON
// download, for data-portability requests.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.selfAccount(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="account-data.json"`)
	writeJSON(w, h.logger, http.StatusOK, exportResponse{
		ExportedAt: time.Now().UTC(),
		Account:    toAccountResponse(acct),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	accts, err := h.svc.ListAll(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toAccountResponses(accts))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}

	acct, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toAccountResponse(acct))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}

	var req updateRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.svc.Update(r.Context(), id, req.toInput())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toAccountResponse(updated))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// selfAccount resolves the authenticated caller to their account record.
func (h *Handler) selfAccount(w http.ResponseWriter, r *http.Request) (*account.Account, bool) {
	claims := sessionClaims(r.Context())
	if claims == nil {
		writeJSON(w, h.logger, http.StatusUnauthorized, errorResponse{Error: "missing session"})
		return nil, false
	}

	acct, err := h.svc.GetByEmail(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	return acct, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, logger, http.StatusBadRequest, errorResponse{Error: "malformed account id"})
		return 0, false
	}
	return id, true
}
