package api

import (
	"net/http"
	"testing"

	"growth_hub/internal/domain"
	"growth_hub/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t)
	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"seller by default", gin.H{"username": "Alice", "password": "password123"}, http.StatusCreated},
		{"duplicate ignores case", gin.H{"username": "alice", "password": "password123"}, http.StatusBadRequest},
		{"provider", gin.H{"username": "bob", "password": "password123", "role": "Provider"}, http.StatusCreated},
		{"admin is not self service", gin.H{"username": "eve", "password": "password123", "role": "admin"}, http.StatusBadRequest},
		{"digits in username", gin.H{"username": "c4rol", "password": "password123"}, http.StatusBadRequest},
		{"short password", gin.H{"username": "dave", "password": "short"}, http.StatusBadRequest},
		{"missing password", gin.H{"username": "dave"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/user", "", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	var bob domain.User
	require.NoError(t, e.db.Where("username = ?", "bob").First(&bob).Error)
	assert.Equal(t, domain.RoleProvider, bob.Role)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodPost, "/user", "", gin.H{"username": "Alice", "password": "password123", "role": "investor"})
	require.Equal(t, http.StatusCreated, w.Code)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		path := "/user"
		if method == http.MethodPost {
			path = "/user/login"
		}
		w := e.do(method, path, "", gin.H{"username": "ALICE", "password": "password123"})
		require.Equal(t, http.StatusOK, w.Code, method)
		resp := decode[AuthResponse](t, w)
		assert.Equal(t, domain.RoleInvestor, resp.Role)

		claims, err := utils.ParseJWT(resp.Token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleInvestor, claims.Role)
	}

	w = e.do(http.MethodPost, "/user/login", "", gin.H{"username": "alice", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = e.do(http.MethodPost, "/user/login", "", gin.H{"username": "nobody", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
