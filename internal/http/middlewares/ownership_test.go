package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dineqr/menuhub/internal/domain/restaurant"
	"github.com/dineqr/menuhub/internal/domain/user"
	"github.com/dineqr/menuhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeRestaurantGetter struct {
	getByIDFn func(ctx context.Context, id string) (restaurant.Restaurant, error)
}

func (f *fakeRestaurantGetter) GetByID(ctx context.Context, id string) (restaurant.Restaurant, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return restaurant.Restaurant{}, restaurant.ErrNotFound
}

// mounts the ownership gate behind an identity-injecting middleware; the
// probe reports which restaurant the gate resolved.
func ownershipProbe(u *user.User, mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.GET("/restaurants/:id", func(c *gin.Context) {
		if u != nil {
			c.Set(string(middlewares.CtxUser), *u)
		}
	}, mw, func(c *gin.Context) {
		rest, _ := middlewares.RestaurantFromContext(c)
		c.JSON(http.StatusOK, gin.H{"restaurantId": rest.ID})
	})

	return r
}

func TestRequireOwnership(t *testing.T) {
	ownerID := uuid.NewString()
	restID := uuid.NewString()

	owned := restaurant.Restaurant{
		ID:       restID,
		OwnerID:  ownerID,
		Name:     "Test Kitchen",
		Slug:     "test-kitchen-1",
		IsActive: true,
	}

	owner := user.User{ID: ownerID, Role: user.RoleOwner, IsActive: true}
	stranger := user.User{ID: uuid.NewString(), Role: user.RoleOwner, IsActive: true}
	admin := user.User{ID: uuid.NewString(), Role: user.RoleAdmin, IsActive: true}

	tests := []struct {
		name           string
		caller         *user.User
		getterSetUp    func(*fakeRestaurantGetter)
		wantStatusCode int
		wantErrCode    string
	}{
		{
			name:   "owner_passes",
			caller: &owner,
			getterSetUp: func(f *fakeRestaurantGetter) {
				f.getByIDFn = func(ctx context.Context, id string) (restaurant.Restaurant, error) {
					return owned, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "stranger_forbidden",
			caller: &stranger,
			getterSetUp: func(f *fakeRestaurantGetter) {
				f.getByIDFn = func(ctx context.Context, id string) (restaurant.Restaurant, error) {
					return owned, nil
				}
			},
			wantStatusCode: http.StatusForbidden,
			wantErrCode:    "forbidden",
		},
		{
			name:   "admin_bypasses",
			caller: &admin,
			getterSetUp: func(f *fakeRestaurantGetter) {
				f.getByIDFn = func(ctx context.Context, id string) (restaurant.Restaurant, error) {
					return owned, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "unknown_restaurant",
			caller:         &owner,
			wantStatusCode: http.StatusNotFound,
			wantErrCode:    "not_found",
		},
		{
			name:   "getter_error",
			caller: &owner,
			getterSetUp: func(f *fakeRestaurantGetter) {
				f.getByIDFn = func(ctx context.Context, id string) (restaurant.Restaurant, error) {
					return restaurant.Restaurant{}, errors.New("db down")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantErrCode:    "internal_error",
		},
		{
			name:           "missing_identity",
			caller:         nil,
			wantStatusCode: http.StatusUnauthorized,
			wantErrCode:    "unauthorized",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			getter := &fakeRestaurantGetter{}

			if tt.getterSetUp != nil {
				tt.getterSetUp(getter)
			}

			mw := middlewares.NewOwnershipMiddleware(getter)
			r := ownershipProbe(tt.caller, mw.RequireOwnership())

			req := httptest.NewRequest(http.MethodGet, "/restaurants/"+restID, nil)
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

func TestRequireOwnershipAttachesRestaurant(t *testing.T) {
	ownerID := uuid.NewString()
	restID := uuid.NewString()

	getter := &fakeRestaurantGetter{
		getByIDFn: func(ctx context.Context, id string) (restaurant.Restaurant, error) {
			if id != restID {
				return restaurant.Restaurant{}, restaurant.ErrNotFound
			}

			return restaurant.Restaurant{ID: restID, OwnerID: ownerID, IsActive: true}, nil
		},
	}

	owner := user.User{ID: ownerID, Role: user.RoleOwner, IsActive: true}

	mw := middlewares.NewOwnershipMiddleware(getter)
	r := ownershipProbe(&owner, mw.RequireOwnership())

	req := httptest.NewRequest(http.MethodGet, "/restaurants/"+restID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		RestaurantID string `json:"restaurantId"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.RestaurantID != restID {
		t.Fatalf("gate attached restaurant %q, want %q", resp.RestaurantID, restID)
	}
}
