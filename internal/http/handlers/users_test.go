package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/vnxcius/accounts-api/internal/auth"
	"github.com/vnxcius/accounts-api/internal/config"
	"github.com/vnxcius/accounts-api/internal/database/model"
	"github.com/vnxcius/accounts-api/internal/database/store"
	"github.com/vnxcius/accounts-api/internal/http/handlers"
	"github.com/vnxcius/accounts-api/internal/http/router"
	"github.com/vnxcius/accounts-api/internal/token"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Type    string          `json:"type"`
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestAPI(t *testing.T) (*gin.Engine, *store.Users) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Session{}))

	users := store.NewUsers(db)
	sessions := store.NewSessions(db)
	maker := token.NewJWTMaker("test-secret-key")

	authenticator, err := auth.NewService(context.Background(), users, sessions, maker, 72*time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:           "4000",
		Environment:    "development",
		AllowedOrigins: "http://localhost:3000",
	}

	h := handlers.NewUserHandler(users, authenticator)
	return router.New(cfg, h, authenticator), users
}

func perform(t *testing.T, engine *gin.Engine, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func registerBody(email string) gin.H {
	return gin.H{
		"name":     "Ana",
		"lastname": "Prueba",
		"email":    email,
		"password": "password123",
	}
}

func loginFor(t *testing.T, engine *gin.Engine, email, password string) (uint, string) {
	t.Helper()

	w := perform(t, engine, http.MethodPost, "/api/users/login", gin.H{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.User.ID, data.Token
}

func TestRegister(t *testing.T) {
	engine, _ := newTestAPI(t)

	w := perform(t, engine, http.MethodPost, "/api/users", registerBody("a@x.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	env := decode(t, w)
	require.Equal(t, "success", env.Type)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "Ana", data["name"])
	require.Equal(t, "a@x.com", data["email"])
	require.NotZero(t, data["id"])

	// the hash must never ride along in the payload
	require.NotContains(t, data, "password")
	require.NotContains(t, w.Body.String(), "$2a$")
}

func TestRegisterValidation(t *testing.T) {
	engine, users := newTestAPI(t)

	tests := []struct {
		name string
		body gin.H
		want string
	}{
		{
			name: "short password",
			body: gin.H{"name": "Ana", "lastname": "Prueba", "email": "a@x.com", "password": "short"},
			want: "password must be at least 8 characters",
		},
		{
			name: "invalid email",
			body: gin.H{"name": "Ana", "lastname": "Prueba", "email": "notanemail", "password": "password123"},
			want: "email must be a valid email address",
		},
		{
			name: "missing name",
			body: gin.H{"lastname": "Prueba", "email": "a@x.com", "password": "password123"},
			want: "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(t, engine, http.MethodPost, "/api/users", tt.body, "")
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Equal(t, tt.want, decode(t, w).Message)
		})
	}

	// nothing was persisted
	_, err := users.GetByEmail(context.Background(), "a@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	engine, users := newTestAPI(t)

	w := perform(t, engine, http.MethodPost, "/api/users", registerBody("a@x.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = perform(t, engine, http.MethodPost, "/api/users", registerBody("A@x.com"), "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Email already in use", decode(t, w).Message)

	taken, err := users.EmailTaken(context.Background(), "a@x.com", 0)
	require.NoError(t, err)
	require.True(t, taken)
}

func TestLogin(t *testing.T) {
	engine, _ := newTestAPI(t)

	w := perform(t, engine, http.MethodPost, "/api/users", registerBody("a@x.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("success", func(t *testing.T) {
		_, tokenStr := loginFor(t, engine, "a@x.com", "password123")
		require.NotEmpty(t, tokenStr)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := perform(t, engine, http.MethodPost, "/api/users/login", gin.H{
			"email":    "a@x.com",
			"password": "wrongpassword",
		}, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		w := perform(t, engine, http.MethodPost, "/api/users/login", gin.H{
			"email":    "missing@x.com",
			"password": "password123",
		}, "")
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestShow(t *testing.T) {
	engine, _ := newTestAPI(t)

	w := perform(t, engine, http.MethodPost, "/api/users", registerBody("a@x.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	id, tokenStr := loginFor(t, engine, "a@x.com", "password123")

	t.Run("found", func(t *testing.T) {
		w := perform(t, engine, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, tokenStr)
		require.Equal(t, http.StatusOK, w.Code)

		var data map[string]any
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
		require.Equal(t, "a@x.com", data["email"])
		require.NotContains(t, data, "password")
	})

	t.Run("missing", func(t *testing.T) {
		w := perform(t, engine, http.MethodGet, fmt.Sprintf("/api/users/%d", id+100), nil, tokenStr)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("no token", func(t *testing.T) {
		w := perform(t, engine, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUpdate(t *testing.T) {
	engine, _ := newTestAPI(t)

	w := perform(t, engine, http.MethodPost, "/api/users", registerBody("a@x.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	w = perform(t, engine, http.MethodPost, "/api/users", registerBody("b@x.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	_, tokenStr := loginFor(t, engine, "a@x.com", "password123")

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		w := perform(t, engine, http.MethodPut, "/api/users/actualizar", gin.H{"name": "Berta"}, tokenStr)
		require.Equal(t, http.StatusOK, w.Code)

		var data map[string]any
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
		require.Equal(t, "Berta", data["name"])
		require.Equal(t, "Prueba", data["lastname"])
		require.Equal(t, "a@x.com", data["email"])
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		w := perform(t, engine, http.MethodPut, "/api/users/actualizar", gin.H{"email": "b@x.com"}, tokenStr)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "Email already in use", decode(t, w).Message)
	})

	t.Run("own email is a no-op conflict-wise", func(t *testing.T) {
		w := perform(t, engine, http.MethodPut, "/api/users/actualizar", gin.H{"email": "a@x.com"}, tokenStr)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		w := perform(t, engine, http.MethodPut, "/api/users/actualizar", gin.H{}, tokenStr)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// Full scenario: register, login, fetch, update, logout, and the
// terminated session no longer authorizes anything.
func TestEndToEndSessionLifecycle(t *testing.T) {
	engine, _ := newTestAPI(t)

	w := perform(t, engine, http.MethodPost, "/api/users", registerBody("a@x.com"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	id, tokenStr := loginFor(t, engine, "a@x.com", "password123")

	w = perform(t, engine, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, tokenStr)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, engine, http.MethodPut, "/api/users/actualizar", gin.H{"name": "B"}, tokenStr)
	require.Equal(t, http.StatusOK, w.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	require.Equal(t, "B", data["name"])
	require.Equal(t, "a@x.com", data["email"])

	w = perform(t, engine, http.MethodPost, "/api/users/logout", nil, tokenStr)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, engine, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, tokenStr)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Session has been terminated", decode(t, w).Message)
}
