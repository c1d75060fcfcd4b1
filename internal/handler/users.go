package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/okarpenko/staybase/internal/auth"
	"github.com/okarpenko/staybase/internal/middleware"
	"github.com/okarpenko/staybase/internal/model"
	"github.com/okarpenko/staybase/internal/store"
)

// UserHandler handles the profile and registration routes.
type UserHandler struct {
	dir    *auth.Directory
	tokens *auth.TokenAuthenticator
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(dir *auth.Directory, tokens *auth.TokenAuthenticator, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		dir:    dir,
		tokens: tokens,
		logger: logger,
	}
}

// RegisterRoutes registers the user routes. The profile route is gated
// behind Basic authentication; registration is public.
func (h *UserHandler) RegisterRoutes(router *mux.Router, basicGate middleware.Middleware) {
	router.Handle("/api/v1/users/auth", basicGate(http.HandlerFunc(h.Profile))).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/register", h.Register).Methods(http.MethodPost)
}

// Profile handles GET /api/v1/users/auth and returns the
// authenticated user's record. The password hash is never serialized.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeMsg(h.logger, w, http.StatusUnauthorized, "msg", "Authorization failed")
		return
	}

	writeJSON(h.logger, w, http.StatusOK, id.User)
}

// registerRequest is the body of POST /api/auth/register.
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// registerResponse is the body returned on successful registration.
type registerResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    registerUser `json:"user"`
}

type registerUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Register handles POST /api/auth/register: it creates a user with a
// bcrypt-hashed password and returns a signed token for it.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		writeMsg(h.logger, w, http.StatusBadRequest, "message", "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeMsg(h.logger, w, http.StatusBadRequest, "message", "email, password and name are required")
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		writeMsg(h.logger, w, http.StatusBadRequest, "message", "invalid role")
		return
	}

	_, err := h.dir.FindByEmail(ctx, req.Email)
	if err == nil {
		writeMsg(h.logger, w, http.StatusBadRequest, "message", "User already exists")
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		h.registerError(w, err, "lookup email")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), auth.BcryptCost)
	if err != nil {
		h.registerError(w, err, "hash password")
		return
	}

	user := &model.User{
		Username:     req.Email,
		Email:        req.Email,
		Name:         req.Name,
		Role:         role,
		PasswordHash: string(hash),
	}

	created, err := h.dir.Create(ctx, user)
	if err != nil {
		h.registerError(w, err, "create user")
		return
	}

	token, err := h.tokens.Issue(created)
	if err != nil {
		h.registerError(w, err, "issue token")
		return
	}

	writeJSON(h.logger, w, http.StatusCreated, registerResponse{
		Message: "User created successfully",
		Token:   token,
		User: registerUser{
			ID:    created.ID,
			Email: created.Email,
			Name:  created.Name,
			Role:  created.Role,
		},
	})
}

func (h *UserHandler) registerError(w http.ResponseWriter, err error, operation string) {
	h.logger.Error("registration failed", zap.String("operation", operation), zap.Error(err))
	writeMsg(h.logger, w, http.StatusInternalServerError, "message", "Error creating user")
}
