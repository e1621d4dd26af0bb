package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"venue-booking/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ExtractTokenFromRequest extracts a JWT token from the Authorization header
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}

// ExtractViewerFromJWT pulls the caller identity out of a JWT: the 'sub'
// claim is the user id, the 'role' claim selects the visibility rules and
// defaults to student when absent. Signature validation belongs to the
// identity provider in front of this service.
func ExtractViewerFromJWT(tokenString string) (models.Viewer, error) {
	if tokenString == "" {
		return models.Viewer{}, errors.New("empty token")
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return models.Viewer{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Viewer{}, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return models.Viewer{}, errors.New("subject claim not found in token")
	}

	viewer := models.Viewer{UserID: sub, Role: models.RoleStudent}
	if role, ok := claims["role"].(string); ok && models.Role(role) == models.RoleAdmin {
		viewer.Role = models.RoleAdmin
	}

	return viewer, nil
}
