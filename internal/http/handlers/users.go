package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vnxcius/accounts-api/internal/auth"
	"github.com/vnxcius/accounts-api/internal/database/model"
	"github.com/vnxcius/accounts-api/internal/database/store"
	"github.com/vnxcius/accounts-api/internal/http/middleware"
	"github.com/vnxcius/accounts-api/internal/util"
)

type UserHandler struct {
	users         *store.Users
	authenticator auth.Authenticator
}

func NewUserHandler(users *store.Users, authenticator auth.Authenticator) *UserHandler {
	return &UserHandler{
		users:         users,
		authenticator: authenticator,
	}
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Register handles POST /api/users
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		failWith(c, http.StatusInternalServerError, "Failed to register user", err)
		return
	}

	user := model.User{
		Name:     req.Name,
		Lastname: req.Lastname,
		Email:    req.Email,
		Password: hash,
	}

	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			fail(c, http.StatusBadRequest, "Email already in use")
			return
		}
		slog.Error("Failed to create user", "error", err)
		failWith(c, http.StatusInternalServerError, "Failed to register user", err)
		return
	}

	success(c, http.StatusCreated, "User registered successfully", publicUser(&user))
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	user, err := h.authenticator.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			fail(c, http.StatusNotFound, "User not found")
		case errors.Is(err, auth.ErrInvalidPassword):
			fail(c, http.StatusUnauthorized, "Invalid password")
		default:
			slog.Error("Failed to verify credentials", "error", err)
			failWith(c, http.StatusInternalServerError, "Failed to log in", err)
		}
		return
	}

	tokenStr, _, err := h.authenticator.IssueToken(c.Request.Context(), user)
	if err != nil {
		failWith(c, http.StatusInternalServerError, "Failed to log in", err)
		return
	}

	success(c, http.StatusOK, "Login successful", gin.H{
		"token": tokenStr,
		"user":  publicUser(user),
	})
}

// Logout handles POST /api/users/logout
func (h *UserHandler) Logout(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		fail(c, http.StatusUnauthorized, "Token not found")
		return
	}

	if err := h.authenticator.EndSession(c.Request.Context(), claims); err != nil {
		slog.Error("Failed to end session", "error", err)
		failWith(c, http.StatusInternalServerError, "Failed to log out", err)
		return
	}

	success(c, http.StatusOK, "Session terminated", nil)
}

// Show handles GET /api/users/:id
func (h *UserHandler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("Failed to fetch user", "error", err)
		failWith(c, http.StatusInternalServerError, "Failed to fetch user", err)
		return
	}

	success(c, http.StatusOK, "User found", publicUser(user))
}

// Update handles PUT /api/users/actualizar. Only fields present in
// the body are mutated; concurrent updates are last-write-wins.
func (h *UserHandler) Update(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		fail(c, http.StatusUnauthorized, "Token not found")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Lastname != nil {
		fields["lastname"] = *req.Lastname
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}

	if len(fields) == 0 {
		fail(c, http.StatusBadRequest, "No fields to update")
		return
	}

	if req.Email != nil {
		current, err := h.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			failWith(c, http.StatusInternalServerError, "Failed to update user", err)
			return
		}
		if store.NormalizeEmail(*req.Email) != current.Email {
			taken, err := h.users.EmailTaken(c.Request.Context(), *req.Email, claims.UserID)
			if err != nil {
				failWith(c, http.StatusInternalServerError, "Failed to update user", err)
				return
			}
			if taken {
				fail(c, http.StatusBadRequest, "Email already in use")
				return
			}
		}
	}

	user, err := h.users.UpdateFields(c.Request.Context(), claims.UserID, fields)
	if err != nil {
		// unique index closes the window between the check above and
		// the write
		if errors.Is(err, store.ErrDuplicateEmail) {
			fail(c, http.StatusBadRequest, "Email already in use")
			return
		}
		slog.Error("Failed to update user", "error", err)
		failWith(c, http.StatusInternalServerError, "Failed to update user", err)
		return
	}

	success(c, http.StatusOK, "User updated successfully", publicUser(user))
}
