package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	h := &Handler{JWTSecret: []byte("test-secret")}

	token, err := h.generateJWT("user-1", "client-1")
	assert.NoError(t, err)

	identity, err := h.validateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "client-1", identity.ClientID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	h := &Handler{JWTSecret: []byte("test-secret")}

	_, err := h.validateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := &Handler{JWTSecret: []byte("secret-a")}
	verifier := &Handler{JWTSecret: []byte("secret-b")}

	token, err := issuer.generateJWT("user-1", "client-1")
	assert.NoError(t, err)

	_, err = verifier.validateToken(token)
	assert.Error(t, err)
}

func TestIdentityFromRequestMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{JWTSecret: []byte("test-secret")}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/rooms", nil)

	_, err := h.identityFromRequest(c)
	assert.Error(t, err)
}

func TestIdentityFromRequestBearer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{JWTSecret: []byte("test-secret")}

	token, err := h.generateJWT("user-1", "client-1")
	assert.NoError(t, err)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/rooms", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	identity, err := h.identityFromRequest(c)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
}
