package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
)

func TestLoginAndProfile(t *testing.T) {
	app := setupApp(t)
	app.createUser(t, "manager@example.com", "secret123", models.RoleManager, true)

	w, resp := app.do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    "manager@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token    string `json:"token"`
		UserRole string `json:"user_role"`
	}
	decode(t, resp.Data, &login)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, models.RoleManager, login.UserRole)

	w, resp = app.do(t, http.MethodGet, "/admin/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile map[string]interface{}
	decode(t, resp.Data, &profile)
	assert.Equal(t, "manager@example.com", profile["email"])

	w, _ = app.do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    "manager@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp = app.do(t, http.MethodPost, "/login", "", map[string]string{"email": "manager@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Errors, "password")
}

func TestLogin_DisabledAccount(t *testing.T) {
	app := setupApp(t)
	app.createUser(t, "old@example.com", "secret123", models.RoleAdmin, false)

	w, _ := app.do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    "old@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRoutes_Auth(t *testing.T) {
	app := setupApp(t)
	staff := app.createUser(t, "staff@example.com", "secret123", models.RoleStaff, true)
	disabled := app.createUser(t, "gone@example.com", "secret123", models.RoleAdmin, false)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "no token", token: "", status: http.StatusUnauthorized},
		{name: "garbage token", token: "not-a-jwt", status: http.StatusUnauthorized},
		{name: "staff role", token: staff, status: http.StatusForbidden},
		{name: "disabled account", token: disabled, status: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := app.do(t, http.MethodGet, "/admin/reservations", tt.token, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Status)
		})
	}
}

func TestStrictRateLimit(t *testing.T) {
	app := setupApp(t)
	body := map[string]string{"email": "nobody@example.com", "password": "x"}

	for i := 0; i < 5; i++ {
		w, _ := app.do(t, http.MethodPost, "/login", "", body)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, _ := app.do(t, http.MethodPost, "/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w, _ = app.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
