package api

import (
	"encoding/json"
	"net/http"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		id, err := s.userStore.Create(r.Context(), req.Email, req.Password)
		if err != nil {
			s.logger.Error("failed to create user", "error", err)
			respondError(w, http.StatusConflict, "User already exists or invalid credentials")
			return
		}

		token, err := s.generateToken(id)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to generate token")
			return
		}
		setTokenCookie(w, token)

		respondJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Registration successful",
			"user_id": id,
			"token":   token,
		})
	}
}

func (s *Server) handleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		u, err := s.userStore.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if u == nil {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := s.generateToken(u.ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to generate token")
			return
		}
		setTokenCookie(w, token)

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Login successful",
			"user_id": u.ID,
			"token":   token,
		})
	}
}

func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
