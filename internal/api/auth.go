package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userContextKey = contextKey("userID")

// Claims represents the JWT payload.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// generateToken creates a new JWT for a user.
func (s *Server) generateToken(userID int) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour * 7) // 7 days
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// tokenFromRequest reads the JWT from the Authorization header or the
// HttpOnly cookie fallback. Returns "" when neither is present.
func tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

func (s *Server) parseToken(tokenString string) (int, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	return claims.UserID, nil
}

// requireAuth rejects requests without a valid JWT.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := tokenFromRequest(r)
		if tokenString == "" {
			respondError(w, http.StatusUnauthorized, "missing authentication token")
			return
		}
		userID, err := s.parseToken(tokenString)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid authentication token")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuth attaches the user ID when a valid token is present but lets
// anonymous requests through.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenString := tokenFromRequest(r); tokenString != "" {
			if userID, err := s.parseToken(tokenString); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userContextKey, userID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// getUserID extracts the user ID from the request context, 0 when anonymous.
func getUserID(r *http.Request) int {
	if val := r.Context().Value(userContextKey); val != nil {
		return val.(int)
	}
	return 0
}
