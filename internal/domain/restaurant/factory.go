package restaurant

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateRestaurantRequest, ownerID string) (Restaurant, error) {
	now := time.Now().UTC()

	slug, err := NewSlug(req.Name, now)

	if err != nil {
		return Restaurant{}, err
	}

	return Restaurant{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Slug:        slug,
		IsActive:    true,
		IsPublished: false, // every restaurant starts as a draft
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
