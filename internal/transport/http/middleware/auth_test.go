package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func validClaims(userID string) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantUserID string
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + signTokenStatic(validClaims("u1")),
			wantStatus: http.StatusOK,
			wantUserID: "u1",
		},
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			authHeader: "Token abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			authHeader: "Bearer " + mustSign("other-secret", validClaims("u1")),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			authHeader: "Bearer " + signTokenStatic(jwt.MapClaims{
				"user_id": "u1",
				"exp":     time.Now().Add(-time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "missing user_id claim",
			authHeader: "Bearer " + signTokenStatic(jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = GetUserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(testSecret)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUserID != "" && gotUserID != tt.wantUserID {
				t.Errorf("user id = %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	t.Run("anonymous request passes through", func(t *testing.T) {
		var viewer *string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer = ViewerIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		OptionalAuthMiddleware(testSecret)(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if viewer != nil {
			t.Errorf("viewer = %v, want nil", *viewer)
		}
	})

	t.Run("invalid token passes through anonymously", func(t *testing.T) {
		var viewer *string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer = ViewerIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		OptionalAuthMiddleware(testSecret)(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if viewer != nil {
			t.Errorf("viewer = %v, want nil", *viewer)
		}
	})

	t.Run("valid token attaches viewer", func(t *testing.T) {
		var viewer *string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer = ViewerIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signTokenStatic(validClaims("u1")))
		rec := httptest.NewRecorder()
		OptionalAuthMiddleware(testSecret)(next).ServeHTTP(rec, req)

		if viewer == nil || *viewer != "u1" {
			t.Errorf("viewer = %v, want u1", viewer)
		}
	})
}

func signTokenStatic(claims jwt.MapClaims) string {
	return mustSign(testSecret, claims)
}

func mustSign(secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	return signed
}
