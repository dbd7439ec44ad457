package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dineqr/menuhub/internal/config"
	"github.com/dineqr/menuhub/internal/domain/restaurant"
	"github.com/dineqr/menuhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type RestaurantGetter interface {
	GetByID(ctx context.Context, id string) (restaurant.Restaurant, error)
}

type OwnershipMiddleware struct {
	restaurants RestaurantGetter
}

func NewOwnershipMiddleware(restaurants RestaurantGetter) *OwnershipMiddleware {
	return &OwnershipMiddleware{restaurants: restaurants}
}

// RequireOwnership gates access to the restaurant named in the path.
// Admins pass unconditionally; everyone else must own it. The check runs
// fresh on every request and the resolved restaurant is attached so the
// handler does not fetch it again.
func (m *OwnershipMiddleware) RequireOwnership() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := UserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		id := c.Param("id")

		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		rest, err := m.restaurants.GetByID(cctx, id)

		if err != nil {
			if errors.Is(err, restaurant.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"error": gin.H{
						"code":    "not_found",
						"message": "Restaurant not found",
					},
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Could not resolve restaurant",
				},
			})
			return
		}

		if u.Role != user.RoleAdmin && rest.OwnerID != u.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "You do not own this restaurant",
				},
			})
			return
		}

		c.Set(string(CtxRestaurant), rest)

		c.Next()
	}
}

func RestaurantFromContext(c *gin.Context) (restaurant.Restaurant, bool) {
	v, ok := c.Get(string(CtxRestaurant))
	if !ok {
		return restaurant.Restaurant{}, false
	}
	rest, ok := v.(restaurant.Restaurant)
	return rest, ok
}
