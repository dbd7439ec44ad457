package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dineqr/menuhub/internal/cache"
	"github.com/dineqr/menuhub/internal/config"
	"github.com/dineqr/menuhub/internal/domain/restaurant"
	"github.com/dineqr/menuhub/internal/domain/user"
	"github.com/dineqr/menuhub/internal/http/middlewares"
	"github.com/dineqr/menuhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type RestaurantStore interface {
	Create(ctx context.Context, rest restaurant.Restaurant) (restaurant.Restaurant, error)
	ListByOwner(ctx context.Context, ownerID string) ([]restaurant.Restaurant, error)
	ListAllActive(ctx context.Context) ([]restaurant.Restaurant, error)
	Update(ctx context.Context, id string, req restaurant.UpdateRestaurantRequest) (restaurant.Restaurant, error)
	SoftDelete(ctx context.Context, id string) error
	TogglePublish(ctx context.Context, id string) (restaurant.Restaurant, error)
}

type CategorySeeder interface {
	SeedDefaultCategories(ctx context.Context, restaurantID string) error
}

type RestaurantsHandler struct {
	repo      RestaurantStore
	seeder    CategorySeeder
	menuCache cache.Cache
}

func NewRestaurantsHandler(repo RestaurantStore, seeder CategorySeeder, menuCache cache.Cache) *RestaurantsHandler {
	return &RestaurantsHandler{
		repo:      repo,
		seeder:    seeder,
		menuCache: menuCache,
	}
}

func menuCacheKey(slug string) string {
	return "menu:" + slug
}

func (h *RestaurantsHandler) invalidateMenu(ctx context.Context, slug string) {
	if h.menuCache != nil {
		h.menuCache.Delete(ctx, menuCacheKey(slug))
	}
}

func (h *RestaurantsHandler) Create(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req restaurant.CreateRestaurantRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rest, err := restaurant.NewFromCreateRequest(req, u.ID)

	if err != nil {
		if errors.Is(err, restaurant.ErrUnsluggableName) {
			RespondBadRequest(ctx, "Name must contain at least one letter or digit.", nil)
			return
		}

		RespondInternal(ctx, "Could not create restaurant")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rest, err = h.repo.Create(cctx, rest)

	if err != nil {
		if errors.Is(err, postgres.ErrSlugTaken) {
			RespondConflict(ctx, "slug_taken", "A restaurant with a conflicting slug already exists.")
			return
		}

		RespondInternal(ctx, "Could not create restaurant")
		return
	}

	// Seeding failure leaves the owner with an empty menu, not a broken
	// restaurant.
	if h.seeder != nil {
		if err := h.seeder.SeedDefaultCategories(cctx, rest.ID); err != nil {
			slog.Default().WarnContext(ctx.Request.Context(), "default category seeding failed",
				"restaurant_id", rest.ID, "err", err)
		}
	}

	ctx.JSON(http.StatusCreated, rest)
}

func (h *RestaurantsHandler) List(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	var (
		items []restaurant.Restaurant
		err   error
	)

	if u.Role == user.RoleAdmin {
		items, err = h.repo.ListAllActive(cctx)
	} else {
		items, err = h.repo.ListByOwner(cctx, u.ID)
	}

	if err != nil {
		RespondInternal(ctx, "Could not list restaurants")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// Get returns the restaurant the ownership gate already resolved.
func (h *RestaurantsHandler) Get(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	ctx.JSON(http.StatusOK, rest)
}

func (h *RestaurantsHandler) Update(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	var req restaurant.UpdateRestaurantRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, rest.ID, req)

	if err != nil {
		if errors.Is(err, restaurant.ErrNotFound) {
			RespondNotFound(ctx, "Restaurant not found")
			return
		}

		RespondInternal(ctx, "Could not update restaurant")
		return
	}

	h.invalidateMenu(cctx, rest.Slug)

	ctx.JSON(http.StatusOK, updated)
}

func (h *RestaurantsHandler) Delete(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.SoftDelete(cctx, rest.ID)

	if err != nil {
		if errors.Is(err, restaurant.ErrNotFound) {
			RespondNotFound(ctx, "Restaurant not found")
			return
		}

		RespondInternal(ctx, "Could not delete restaurant")
		return
	}

	h.invalidateMenu(cctx, rest.Slug)

	ctx.Status(http.StatusNoContent)
}

// TogglePublish flips between draft and published; calling it twice lands
// the restaurant back where it started.
func (h *RestaurantsHandler) TogglePublish(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.TogglePublish(cctx, rest.ID)

	if err != nil {
		if errors.Is(err, restaurant.ErrNotFound) {
			RespondNotFound(ctx, "Restaurant not found")
			return
		}

		RespondInternal(ctx, "Could not toggle publish state")
		return
	}

	h.invalidateMenu(cctx, rest.Slug)

	ctx.JSON(http.StatusOK, gin.H{
		"id":          updated.ID,
		"isPublished": updated.IsPublished,
	})
}
