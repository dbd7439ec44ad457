package menu

import (
	"errors"
	"time"
)

type Category struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"displayOrder"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Item struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	CategoryID   string    `json:"categoryId"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	PriceCents   int64     `json:"priceCents"`
	IsAvailable  bool      `json:"isAvailable"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("menu item not found")
)

// DefaultCategoryNames are seeded for every new restaurant so owners have
// a sensible starting structure.
var DefaultCategoryNames = []string{"Starters", "Mains", "Desserts", "Drinks"}

type CreateCategoryRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=80"`
	DisplayOrder int    `json:"displayOrder" binding:"omitempty,min=0,max=1000"`
}

type UpdateCategoryRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=80"`
	DisplayOrder int    `json:"displayOrder" binding:"omitempty,min=0,max=1000"`
	IsActive     *bool  `json:"isActive" binding:"omitempty"`
}

type CreateItemRequest struct {
	CategoryID  string `json:"categoryId" binding:"required,uuid"`
	Name        string `json:"name" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	PriceCents  int64  `json:"priceCents" binding:"required,min=0"`
}

type UpdateItemRequest struct {
	CategoryID  string `json:"categoryId" binding:"required,uuid"`
	Name        string `json:"name" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	PriceCents  int64  `json:"priceCents" binding:"required,min=0"`
}

// PublicMenu is the shape served at GET /menu/:slug: categories in
// display order, each with its available items.
type PublicMenu struct {
	RestaurantName string           `json:"restaurantName"`
	Description    string           `json:"description,omitempty"`
	Slug           string           `json:"slug"`
	Categories     []PublicCategory `json:"categories"`
}

type PublicCategory struct {
	Name  string       `json:"name"`
	Items []PublicItem `json:"items"`
}

type PublicItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"priceCents"`
}
