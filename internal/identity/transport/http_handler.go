package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"bustracker/internal/identity/domain"
	"bustracker/internal/identity/usecase"
	"bustracker/internal/shared/auth"
	"bustracker/internal/shared/logger"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type contextKey string

const contextKeyUserID contextKey = "user_id"

type Handler struct {
	svc *usecase.Service
	log *logger.Logger
}

func NewHandler(svc *usecase.Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register — POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if req.Role == "" {
		req.Role = domain.RolePassenger
	}

	userID, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrInvalidRole):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error(logger.Entry{Action: "register_failed", Message: err.Error(), Error: &logger.ErrObj{Msg: err.Error()}})
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, RegisterResponse{
		Message: "User registered successfully. Waiting for admin approval.",
		UserID:  userID,
	})
}

// Login — POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, domain.ErrUserNotApproved):
			respondError(w, http.StatusForbidden, err.Error())
		default:
			h.log.Error(logger.Entry{Action: "login_failed", Message: err.Error(), Error: &logger.ErrObj{Msg: err.Error()}})
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        userResponse(user),
	})
}

// Me — GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyUserID).(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error(logger.Entry{Action: "me_failed", Message: err.Error(), Error: &logger.ErrObj{Msg: err.Error()}})
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, userResponse(user))
}

// PendingUsers — GET /admin/users/pending
func (h *Handler) PendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.PendingUsers(r.Context())
	if err != nil {
		h.log.Error(logger.Entry{Action: "pending_users_failed", Message: err.Error(), Error: &logger.ErrObj{Msg: err.Error()}})
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// ApproveUser — PUT /admin/users/{user_id}/approve
func (h *Handler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	h.decideUser(w, r, h.svc.Approve, "User approved successfully")
}

// RejectUser — PUT /admin/users/{user_id}/reject
func (h *Handler) RejectUser(w http.ResponseWriter, r *http.Request) {
	h.decideUser(w, r, h.svc.Reject, "User rejected successfully")
}

func (h *Handler) decideUser(w http.ResponseWriter, r *http.Request, decide func(context.Context, string) error, message string) {
	userID := r.PathValue("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := decide(r.Context(), userID); err != nil {
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error(logger.Entry{Action: "decide_user_failed", Message: err.Error(), Error: &logger.ErrObj{Msg: err.Error()}})
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// AuthMiddleware requires any valid bearer token.
func AuthMiddleware(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			claims, err := jwtService.ValidateToken(parts[1])
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyUserID, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

func readJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
