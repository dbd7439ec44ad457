package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dineqr/menuhub/internal/auth"
	"github.com/dineqr/menuhub/internal/domain/user"
	"github.com/dineqr/menuhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserStore struct {
	getByIDFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return user.User{}, user.ErrNotFound
}

func activeUser(id string) user.User {
	return user.User{
		ID:       id,
		Email:    "owner@example.com",
		Role:     user.RoleOwner,
		IsActive: true,
	}
}

// mounts a probe endpoint behind the gate; the probe reports whether an
// identity landed in the request context.
func authProbe(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.GET("/probe", mw, func(c *gin.Context) {
		u, ok := middlewares.UserFromContext(c)

		c.JSON(http.StatusOK, gin.H{
			"authenticated": ok,
			"userId":        u.ID,
		})
	})

	return r
}

func TestRequireAuth(t *testing.T) {
	jwt := auth.NewManager("test-secret", time.Hour)
	userID := uuid.NewString()

	validToken, err := jwt.Issue(userID, "owner@example.com", string(user.RoleOwner))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	expiredJWT := auth.NewManager("test-secret", -time.Hour)
	expiredToken, err := expiredJWT.Issue(userID, "owner@example.com", string(user.RoleOwner))
	if err != nil {
		t.Fatalf("issue expired token: %v", err)
	}

	tests := []struct {
		name           string
		header         string
		storeSetUp     func(*fakeUserStore)
		wantStatusCode int
		wantErrCode    string
	}{
		{
			name:   "success",
			header: "Bearer " + validToken,
			storeSetUp: func(f *fakeUserStore) {
				f.getByIDFn = func(ctx context.Context, id string) (user.User, error) {
					return activeUser(id), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_header",
			header:         "",
			wantStatusCode: http.StatusUnauthorized,
			wantErrCode:    "unauthorized",
		},
		{
			name:           "not_bearer",
			header:         "Basic dXNlcjpwYXNz",
			wantStatusCode: http.StatusUnauthorized,
			wantErrCode:    "unauthorized",
		},
		{
			name:           "garbage_token",
			header:         "Bearer not.a.jwt",
			wantStatusCode: http.StatusUnauthorized,
			wantErrCode:    "unauthorized",
		},
		{
			name:           "expired_token",
			header:         "Bearer " + expiredToken,
			wantStatusCode: http.StatusUnauthorized,
			wantErrCode:    "unauthorized",
		},
		{
			// a valid token whose subject no longer exists must not pass;
			// the gate does a live lookup rather than trusting the claims
			name:   "deleted_user",
			header: "Bearer " + validToken,
			storeSetUp: func(f *fakeUserStore) {
				f.getByIDFn = func(ctx context.Context, id string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusUnauthorized,
			wantErrCode:    "unauthorized",
		},
		{
			name:   "deactivated_user",
			header: "Bearer " + validToken,
			storeSetUp: func(f *fakeUserStore) {
				f.getByIDFn = func(ctx context.Context, id string) (user.User, error) {
					u := activeUser(id)
					u.IsActive = false
					return u, nil
				}
			},
			wantStatusCode: http.StatusUnauthorized,
			wantErrCode:    "account_deactivated",
		},
		{
			name:   "store_error",
			header: "Bearer " + validToken,
			storeSetUp: func(f *fakeUserStore) {
				f.getByIDFn = func(ctx context.Context, id string) (user.User, error) {
					return user.User{}, errors.New("db down")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantErrCode:    "internal_error",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{}

			if tt.storeSetUp != nil {
				tt.storeSetUp(store)
			}

			mw := middlewares.NewAuthMiddleware(jwt, store)
			r := authProbe(mw.RequireAuth())

			req := httptest.NewRequest(http.MethodGet, "/probe", nil)

			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantErrCode != "" {
				var resp struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}

				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal error body: %v", err)
				}

				if resp.Error.Code != tt.wantErrCode {
					t.Fatalf("got error code %q, want %q", resp.Error.Code, tt.wantErrCode)
				}
			}
		})
	}
}

func TestRequireAuthAttachesUser(t *testing.T) {
	jwt := auth.NewManager("test-secret", time.Hour)
	userID := uuid.NewString()

	token, err := jwt.Issue(userID, "owner@example.com", string(user.RoleOwner))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	store := &fakeUserStore{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			return activeUser(id), nil
		},
	}

	mw := middlewares.NewAuthMiddleware(jwt, store)
	r := authProbe(mw.RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Authenticated bool   `json:"authenticated"`
		UserID        string `json:"userId"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if !resp.Authenticated || resp.UserID != userID {
		t.Fatalf("expected user %q in context, got %+v", userID, resp)
	}
}

func TestOptionalAuth(t *testing.T) {
	jwt := auth.NewManager("test-secret", time.Hour)
	userID := uuid.NewString()

	token, err := jwt.Issue(userID, "owner@example.com", string(user.RoleOwner))
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		stored     func(ctx context.Context, id string) (user.User, error)
		wantAuthed bool
	}{
		{
			name:   "with_valid_token",
			header: "Bearer " + token,
			stored: func(ctx context.Context, id string) (user.User, error) {
				return activeUser(id), nil
			},
			wantAuthed: true,
		},
		{
			name:       "without_token",
			header:     "",
			wantAuthed: false,
		},
		{
			name:       "with_garbage_token",
			header:     "Bearer nope",
			wantAuthed: false,
		},
		{
			name:   "with_deactivated_account",
			header: "Bearer " + token,
			stored: func(ctx context.Context, id string) (user.User, error) {
				u := activeUser(id)
				u.IsActive = false
				return u, nil
			},
			wantAuthed: false,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{getByIDFn: tt.stored}

			mw := middlewares.NewAuthMiddleware(jwt, store)
			r := authProbe(mw.OptionalAuth())

			req := httptest.NewRequest(http.MethodGet, "/probe", nil)

			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			// optional auth never blocks
			if w.Code != http.StatusOK {
				t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
			}

			var resp struct {
				Authenticated bool `json:"authenticated"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}

			if resp.Authenticated != tt.wantAuthed {
				t.Fatalf("authenticated=%v, want %v", resp.Authenticated, tt.wantAuthed)
			}
		})
	}
}
