package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/vnxcius/accounts-api/internal/database/model"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Lastname string `json:"lastname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateRequest uses pointers so "absent" and "empty" are different
// things; only fields present in the body are applied.
type UpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Lastname *string `json:"lastname" binding:"omitempty,min=1"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

// PublicUser is the allow-listed response shape. The password hash
// never rides along, whatever the persistence layer holds.
type PublicUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Lastname  string    `json:"lastname"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func publicUser(user *model.User) PublicUser {
	return PublicUser{
		ID:        user.ID,
		Name:      user.Name,
		Lastname:  user.Lastname,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func success(c *gin.Context, status int, title string, data any) {
	c.JSON(status, gin.H{
		"type":  "success",
		"title": title,
		"data":  data,
	})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"type":    "error",
		"message": message,
	})
}

func failWith(c *gin.Context, status int, message string, err error) {
	c.JSON(status, gin.H{
		"type":    "error",
		"message": message,
		"error":   err.Error(),
	})
}

// bindingErrorMessage reports the first violated rule in a readable
// form instead of validator's raw struct-field dump.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "email":
			return field + " must be a valid email address"
		case "min":
			return field + " must be at least " + fe.Param() + " characters"
		}
		return field + " is invalid"
	}
	return "invalid request body"
}
