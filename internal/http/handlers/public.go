package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dineqr/menuhub/internal/cache"
	"github.com/dineqr/menuhub/internal/config"
	"github.com/dineqr/menuhub/internal/domain/menu"
	"github.com/dineqr/menuhub/internal/domain/restaurant"
	"github.com/dineqr/menuhub/internal/domain/user"
	"github.com/dineqr/menuhub/internal/http/middlewares"
	"github.com/dineqr/menuhub/internal/observability"
	"github.com/gin-gonic/gin"
)

type PublicRestaurantStore interface {
	GetPublicBySlug(ctx context.Context, slug string) (restaurant.Restaurant, error)
	RecordScan(ctx context.Context, slug string) (restaurant.Restaurant, error)
	RecordView(ctx context.Context, id string) error
}

type PublicMenuLister interface {
	ListPublicMenu(ctx context.Context, restaurantID string) ([]menu.PublicCategory, error)
}

type PublicHandler struct {
	restaurants PublicRestaurantStore
	menus       PublicMenuLister
	menuCache   cache.Cache
	prom        *observability.Prom
	baseURL     string
}

const menuCacheTTL = 30 * time.Second

func NewPublicHandler(restaurants PublicRestaurantStore, menus PublicMenuLister, menuCache cache.Cache, prom *observability.Prom, baseURL string) *PublicHandler {
	return &PublicHandler{
		restaurants: restaurants,
		menus:       menus,
		menuCache:   menuCache,
		prom:        prom,
		baseURL:     baseURL,
	}
}

// Menu serves the public digital menu. Draft and deactivated restaurants
// 404 so their existence does not leak. The view counter is bumped even
// on a cache hit; only the menu body is cached.
func (h *PublicHandler) Menu(ctx *gin.Context) {
	slug := ctx.Param("slug")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rest, err := h.restaurants.GetPublicBySlug(cctx, slug)

	if err != nil {
		if errors.Is(err, restaurant.ErrNotFound) {
			RespondNotFound(ctx, "Menu not found")
			return
		}

		RespondInternal(ctx, "Could not load menu")
		return
	}

	// Owners previewing their own page do not inflate the stats; anyone
	// else counts. Counting failures never block a menu render.
	if viewer, ok := middlewares.UserFromContext(ctx); !ok || (viewer.ID != rest.OwnerID && viewer.Role != user.RoleAdmin) {
		_ = h.restaurants.RecordView(cctx, rest.ID)

		if h.prom != nil {
			h.prom.MenuViewsTotal.Inc()
		}
	}

	if h.menuCache != nil {
		if cached, ok := h.menuCache.Get(cctx, menuCacheKey(slug)); ok {
			var payload menu.PublicMenu
			if json.Unmarshal([]byte(cached), &payload) == nil {
				RespondJSONWithETag(ctx, http.StatusOK, payload)
				return
			}
		}
	}

	categories, err := h.menus.ListPublicMenu(cctx, rest.ID)

	if err != nil {
		RespondInternal(ctx, "Could not load menu")
		return
	}

	payload := menu.PublicMenu{
		RestaurantName: rest.Name,
		Description:    rest.Description,
		Slug:           rest.Slug,
		Categories:     categories,
	}

	if h.menuCache != nil {
		if raw, err := json.Marshal(payload); err == nil {
			h.menuCache.Set(cctx, menuCacheKey(slug), string(raw), menuCacheTTL)
		}
	}

	RespondJSONWithETag(ctx, http.StatusOK, payload)
}

// Scan records a QR scan and hands back the redirect target. The
// increment happens in a single storage-level update, so N concurrent
// scans of a busy menu land N counts.
func (h *PublicHandler) Scan(ctx *gin.Context) {
	slug := ctx.Param("slug")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rest, err := h.restaurants.RecordScan(cctx, slug)

	if err != nil {
		if errors.Is(err, restaurant.ErrNotFound) {
			RespondNotFound(ctx, "Menu not found")
			return
		}

		RespondInternal(ctx, "Could not record scan")
		return
	}

	if h.prom != nil {
		h.prom.ScansTotal.Inc()
	}

	ctx.JSON(http.StatusOK, gin.H{
		"redirectUrl": restaurant.PublicMenuURL(h.baseURL, rest.Slug),
	})
}
