package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/feteer-counter/api/internal/auth"
)

func protectedRouter(jwtSecret string) chi.Router {
	r := chi.NewRouter()
	r.Use(Authenticate(jwtSecret))
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			http.Error(w, "no claims", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(claims.Principal))
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, "staff")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protectedRouter(secret).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200; body: %s", rr.Code, rr.Body.String())
	}
	if rr.Body.String() != "staff" {
		t.Errorf("principal: got %q, want staff", rr.Body.String())
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	protectedRouter("test-secret").ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestAuthenticate_BadFormat(t *testing.T) {
	for _, header := range []string{"Basic abc", "Bearer", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", header)
		rr := httptest.NewRecorder()
		protectedRouter("test-secret").ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("header %q: got %d, want 401", header, rr.Code)
		}
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	token, err := auth.GenerateToken("other-secret", "staff")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protectedRouter("test-secret").ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestRequireValidID(t *testing.T) {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(RequireValidID)
		r.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
			if got := IDFromContext(r.Context()); got != 42 {
				t.Errorf("id from context: got %d, want 42", got)
			}
			w.WriteHeader(http.StatusOK)
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/things/42", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200; body: %s", rr.Code, rr.Body.String())
	}
}

func TestRequireValidID_Rejects(t *testing.T) {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(RequireValidID)
		r.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler ran for invalid id")
		})
	})

	for _, id := range []string{"0", "-7", "abc", "1.5"} {
		req := httptest.NewRequest(http.MethodGet, "/things/"+id, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("id %q: got %d, want 400", id, rr.Code)
		}
	}
}
