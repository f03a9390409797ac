package handlers

import (
	"errors"
	"net/http"

	"github.com/gatherly/server/internal/api/middleware"
	"github.com/gatherly/server/internal/api/problem"
	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/gatherly/server/internal/metrics"
)

// AuthHandler serves signup, login, and session introspection.
type AuthHandler struct {
	users  *users.Service
	tokens *auth.TokenManager
	env    string
}

func NewAuthHandler(usersService *users.Service, tokens *auth.TokenManager, env string) *AuthHandler {
	return &AuthHandler{users: usersService, tokens: tokens, env: env}
}

type credentialsResponse struct {
	Token string           `json:"token"`
	User  users.PublicUser `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input users.SignupInput
	if !decodeJSON(w, r, &input, h.env) {
		return
	}

	user, err := h.users.Register(r.Context(), input)
	if err != nil {
		switch {
		case writeValidationProblem(w, r, err, h.env):
		case errors.Is(err, users.ErrDuplicateEmail):
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict,
				"Email Already Registered", err, h.env,
				problem.WithDetail("an account with this email already exists"))
		default:
			writeInternal(w, r, err, h.env)
		}
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		writeInternal(w, r, err, h.env)
		return
	}

	metrics.SignupsTotal.Inc()
	writeJSON(w, http.StatusCreated, credentialsResponse{Token: token, User: user.Public()})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &input, h.env) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
				"Invalid Credentials", err, h.env,
				problem.WithDetail("email or password is incorrect"))
			return
		}
		writeInternal(w, r, err, h.env)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		writeInternal(w, r, err, h.env)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, credentialsResponse{Token: token, User: user.Public()})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeInternal(w, r, errors.New("no user in request context"), h.env)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user.Public()})
}

// Logout is a stateless acknowledgement: tokens are not revocable, clients
// discard them locally.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
