package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/baharkarakas/hello-server/internal/api/httpx"
	"github.com/baharkarakas/hello-server/internal/api/validate"
	"github.com/baharkarakas/hello-server/internal/auth"
	"github.com/baharkarakas/hello-server/internal/models"
	"github.com/baharkarakas/hello-server/internal/worker"
)

type PoolStats interface {
	Stats() worker.Stats
}

type AccessLogReader interface {
	Recent(ctx context.Context, limit int) ([]models.AccessLog, error)
}

type AdminHandler struct {
	TM           *auth.TokenManager
	PasswordHash string
	Pool         PoolStats
	Logs         AccessLogReader
}

type loginReq struct {
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

const adminRole = "admin"

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.PasswordHash == "" {
		httpx.WriteError(w, http.StatusServiceUnavailable, "login_disabled", "admin login is not configured", nil)
		return
	}
	var req loginReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request", nil)
		return
	}
	if err := validate.Collect(validate.Required("password", req.Password)); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid request", err)
		return
	}
	if err := auth.VerifyPassword(req.Password, h.PasswordHash); err != nil {
		slog.Warn("admin login failed", "remote", r.RemoteAddr)
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
		return
	}
	h.issue(w, adminRole, adminRole)
}

func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := httpx.DecodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request", nil)
		return
	}
	claims, err := h.TM.ParseRefresh(req.RefreshToken)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid refresh token", nil)
		return
	}
	h.issue(w, claims.Subject, claims.Role)
}

func (h *AdminHandler) issue(w http.ResponseWriter, subject, role string) {
	pair, err := h.TM.GeneratePair(subject, role)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "token_failed", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		ExpiresIn:    int64(time.Until(pair.AccessExp).Truncate(time.Second).Seconds()),
	})
}

func (h *AdminHandler) PoolStats(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Pool.Stats())
}

func (h *AdminHandler) Requests(w http.ResponseWriter, r *http.Request) {
	limit, ef := validate.OptionalIntRange("limit", r.URL.Query().Get("limit"), 1, 500, 50)
	if err := validate.Collect(ef); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid query", err)
		return
	}
	logs, err := h.Logs.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("list access logs", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	if logs == nil {
		logs = []models.AccessLog{}
	}
	httpx.WriteJSON(w, http.StatusOK, logs)
}
