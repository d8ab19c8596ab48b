package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the verified caller identity carried in the bearer token. The
// chat core trusts it: signature verification against the signing authority
// happens out-of-band, this handler only checks the shared-secret dev tokens
// it issues itself.
type Identity struct {
	UserID   string
	ClientID string
}

// generateJWT issues an HS256 token carrying the user and client ids.
func (h *Handler) generateJWT(userID, clientID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   userID,
		"client_id": clientID,
		"exp":       time.Now().Add(time.Hour * 72).Unix(),
		"iss":       "roomchat-service",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}

// GetToken issues a development token. client_id is required; user_id is
// generated when absent.
func (h *Handler) GetToken(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id is required"})
		return
	}
	userID := c.Query("user_id")
	if userID == "" {
		userID = uuid.New().String()
	}

	token, err := h.generateJWT(userID, clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user_id": userID, "client_id": clientID})
}

// identityFromRequest validates the bearer token and extracts the identity.
func (h *Handler) identityFromRequest(c *gin.Context) (*Identity, error) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, errors.New("authorization token missing")
	}
	return h.validateToken(strings.TrimPrefix(authHeader, "Bearer "))
}

func (h *Handler) validateToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, _ := claims["user_id"].(string)
	clientID, _ := claims["client_id"].(string)
	if userID == "" || clientID == "" {
		return nil, errors.New("token missing identity claims")
	}
	return &Identity{UserID: userID, ClientID: clientID}, nil
}
