package handler

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/feteer-counter/api/internal/auth"
)

// AuthHandler handles the shared-credential staff login. Every staff
// member at the counter authenticates with the same username/password;
// tokens identify the session, not the person.
type AuthHandler struct {
	staffUsername     string
	staffPasswordHash string
	jwtSecret         string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(staffUsername, staffPasswordHash, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		staffUsername:     staffUsername,
		staffPasswordHash: staffPasswordHash,
		jwtSecret:         jwtSecret,
	}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
}

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// --- Handlers ---

// Login handles the shared staff credential.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.staffUsername)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(h.staffPasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	h.respondWithTokens(w)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh_token is required"})
		return
	}

	if _, err := auth.ValidateToken(h.jwtSecret, req.RefreshToken); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	h.respondWithTokens(w)
}

// --- Helpers ---

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, h.staffUsername)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, h.staffUsername)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
