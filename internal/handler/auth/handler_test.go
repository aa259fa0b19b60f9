package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/memory-api/internal/model"
	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
)

type stubService struct{}

func (stubService) Login(_ context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	switch {
	case req.ClientID != "alice01":
		return nil, apperrors.NotFound("user", nil)
	case req.Password != "password1":
		return nil, apperrors.Unauthorized("invalid password")
	}
	return &model.TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 3600}, nil
}

func TestLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(stubService{}).RegisterRoutes(r.Group("/api"))

	tests := []struct {
		body string
		code int
	}{
		{`{"clientId":"alice01","password":"password1"}`, http.StatusOK},
		{`{"clientId":"nobody","password":"password1"}`, http.StatusNotFound},
		{`{"clientId":"alice01","password":"nope"}`, http.StatusUnauthorized},
		{`{"clientId":"alice01"}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.code, w.Code, tt.body)
		if tt.code == http.StatusOK {
			assert.Contains(t, w.Body.String(), `"accessToken":"tok"`)
			assert.Contains(t, w.Body.String(), `"tokenType":"Bearer"`)
		}
	}
}
