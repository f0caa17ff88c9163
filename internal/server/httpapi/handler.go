// Package httpapi exposes the account flows as a JSON HTTP API together with
// the metrics and liveness endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

// MsgMalformedRequest is returned for bodies that are not valid JSON.
const MsgMalformedRequest = "Malformed request body."

const maxBodyBytes = 1 << 20

// AccountAPI is the part of services.AccountService used by the handlers.
type AccountAPI interface {
	Register(ctx context.Context, username, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, token string) (*services.Identity, error)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type meResponse struct {
	UserID      string    `json:"userId"`
	ProfileID   string    `json:"profileId"`
	IsAdmin     bool      `json:"isAdmin"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatarUrl"`
	LinkageType string    `json:"linkageType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Handler serves /api/auth/*.
type Handler struct {
	accounts AccountAPI
	log      logging.Logger
}

func NewHandler(accounts AccountAPI, log logging.Logger) *Handler {
	return &Handler{accounts: accounts, log: log.With("module", "httpapi")}
}

// Register mounts the account routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("GET /api/auth/me", h.handleMe)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err, services.MsgRegisterFailed)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err, services.MsgLoginFailed)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: services.MsgInvalidToken})
		return
	}

	id, err := h.accounts.Me(r.Context(), token)
	if err != nil {
		h.fail(w, r, err, services.MsgMeFailed)
		return
	}

	p := id.Profile
	writeJSON(w, http.StatusOK, meResponse{
		UserID:      id.CredentialID,
		ProfileID:   p.ID,
		IsAdmin:     id.IsAdmin,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Bio:         p.Bio,
		AvatarURL:   p.AvatarURL,
		LinkageType: string(p.LinkageType),
		CreatedAt:   p.CreatedAt,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		h.log.Debug(r.Context(), "malformed request", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: MsgMalformedRequest})
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var status int
	switch services.Classify(err) {
	case services.CategoryValidation:
		status = http.StatusBadRequest
	case services.CategoryUnauthenticated:
		status = http.StatusUnauthorized
	default:
		status = http.StatusInternalServerError
		h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, messageResponse{Message: services.PublicMessage(err, fallback)})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errServerClosed reports whether err only signals a graceful shutdown.
func errServerClosed(err error) bool {
	return err == nil || errors.Is(err, http.ErrServerClosed)
}
