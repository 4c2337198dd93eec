package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/config"
	"loan-origination/internal/pkg/apperrors"
)

type AuthHandler struct {
	cfg    config.Config
	logger *slog.Logger
}

func NewAuthHandler(cfg config.Config, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		logger: l.With("component", "AuthHandler"),
	}
}

// GenerateBearerToken issues a signed JWT for API access.
func (h *AuthHandler) GenerateBearerToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request body", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if req.Username == "" {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, "username is required"))
		return
	}

	claims := jwt.MapClaims{
		"username": req.Username,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(h.cfg.Server.Auth.JWTSecret))
	if err != nil {
		h.logger.Error("failed to sign token", "error", err)
		respondError(w, fmt.Errorf("%w: failed to sign token", apperrors.ErrInternalServer))
		return
	}

	h.logger.Info("Bearer token issued", "username", req.Username)
	respondJSON(w, http.StatusOK, map[string]string{"token": fmt.Sprintf("Bearer %s", tokenString)})
}
