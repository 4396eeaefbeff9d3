package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promosign/spin-api/internal/service"
)

type stubTokenService struct {
	token string
	ttl   time.Duration
	err   error
}

func (s *stubTokenService) Issue(_ context.Context, _ string) (string, time.Duration, error) {
	return s.token, s.ttl, s.err
}

func (s *stubTokenService) Validate(_ context.Context, _ string) (string, error) {
	return "", service.ErrTokenInvalid
}

func TestTokenHandler_GenerateReportsExpiryInSeconds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewTokenHandler(&stubTokenService{token: "abc123", ttl: 15 * time.Minute})

	router := gin.New()
	router.GET("/tokens/generate", handler.HandleGenerateToken)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tokens/generate?display_id=lobby_1", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc123", body["token"])
	assert.EqualValues(t, 900, body["expiresIn"])
	assert.NotContains(t, body, "expires_at")
}

func TestTokenHandler_GenerateRequiresDisplayID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewTokenHandler(&stubTokenService{})

	router := gin.New()
	router.GET("/tokens/generate", handler.HandleGenerateToken)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tokens/generate", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
