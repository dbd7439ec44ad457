package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dineqr/menuhub/internal/cache"
	"github.com/dineqr/menuhub/internal/config"
	"github.com/dineqr/menuhub/internal/domain/menu"
	"github.com/dineqr/menuhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type MenuStore interface {
	CreateCategory(ctx context.Context, restaurantID string, req menu.CreateCategoryRequest) (menu.Category, error)
	UpdateCategory(ctx context.Context, restaurantID, categoryID string, req menu.UpdateCategoryRequest) (menu.Category, error)
	DeleteCategory(ctx context.Context, restaurantID, categoryID string) error
	ListCategories(ctx context.Context, restaurantID string) ([]menu.Category, error)
	CreateItem(ctx context.Context, restaurantID string, req menu.CreateItemRequest) (menu.Item, error)
	UpdateItem(ctx context.Context, restaurantID, itemID string, req menu.UpdateItemRequest) (menu.Item, error)
	DeleteItem(ctx context.Context, restaurantID, itemID string) error
	ToggleItemAvailability(ctx context.Context, restaurantID, itemID string) (menu.Item, error)
	ListItems(ctx context.Context, restaurantID string) ([]menu.Item, error)
}

type MenuHandler struct {
	repo      MenuStore
	menuCache cache.Cache
}

func NewMenuHandler(repo MenuStore, menuCache cache.Cache) *MenuHandler {
	return &MenuHandler{repo: repo, menuCache: menuCache}
}

func (h *MenuHandler) invalidate(ctx context.Context, slug string) {
	if h.menuCache != nil {
		h.menuCache.Delete(ctx, menuCacheKey(slug))
	}
}

func (h *MenuHandler) CreateCategory(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	var req menu.CreateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.repo.CreateCategory(cctx, rest.ID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create category")
		return
	}

	h.invalidate(cctx, rest.Slug)

	ctx.JSON(http.StatusCreated, c)
}

func (h *MenuHandler) UpdateCategory(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	var req menu.UpdateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.repo.UpdateCategory(cctx, rest.ID, ctx.Param("categoryId"), req)

	if err != nil {
		if errors.Is(err, menu.ErrCategoryNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}

		RespondInternal(ctx, "Could not update category")
		return
	}

	h.invalidate(cctx, rest.Slug)

	ctx.JSON(http.StatusOK, c)
}

func (h *MenuHandler) DeleteCategory(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.DeleteCategory(cctx, rest.ID, ctx.Param("categoryId"))

	if err != nil {
		if errors.Is(err, menu.ErrCategoryNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}

		RespondInternal(ctx, "Could not delete category")
		return
	}

	h.invalidate(cctx, rest.Slug)

	ctx.Status(http.StatusNoContent)
}

func (h *MenuHandler) ListCategories(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, err := h.repo.ListCategories(cctx, rest.ID)

	if err != nil {
		RespondInternal(ctx, "Could not list categories")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *MenuHandler) CreateItem(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	var req menu.CreateItemRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	it, err := h.repo.CreateItem(cctx, rest.ID, req)

	if err != nil {
		if errors.Is(err, menu.ErrCategoryNotFound) {
			RespondBadRequest(ctx, "Category does not belong to this restaurant.", nil)
			return
		}

		RespondInternal(ctx, "Could not create menu item")
		return
	}

	h.invalidate(cctx, rest.Slug)

	ctx.JSON(http.StatusCreated, it)
}

func (h *MenuHandler) UpdateItem(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	var req menu.UpdateItemRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	it, err := h.repo.UpdateItem(cctx, rest.ID, ctx.Param("itemId"), req)

	if err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			RespondNotFound(ctx, "Menu item not found")
			return
		}

		RespondInternal(ctx, "Could not update menu item")
		return
	}

	h.invalidate(cctx, rest.Slug)

	ctx.JSON(http.StatusOK, it)
}

func (h *MenuHandler) DeleteItem(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.DeleteItem(cctx, rest.ID, ctx.Param("itemId"))

	if err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			RespondNotFound(ctx, "Menu item not found")
			return
		}

		RespondInternal(ctx, "Could not delete menu item")
		return
	}

	h.invalidate(cctx, rest.Slug)

	ctx.Status(http.StatusNoContent)
}

func (h *MenuHandler) ToggleItemAvailability(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	it, err := h.repo.ToggleItemAvailability(cctx, rest.ID, ctx.Param("itemId"))

	if err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			RespondNotFound(ctx, "Menu item not found")
			return
		}

		RespondInternal(ctx, "Could not toggle item availability")
		return
	}

	h.invalidate(cctx, rest.Slug)

	ctx.JSON(http.StatusOK, it)
}

func (h *MenuHandler) ListItems(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, err := h.repo.ListItems(cctx, rest.ID)

	if err != nil {
		RespondInternal(ctx, "Could not list menu items")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
