package restaurant

import (
	"errors"
	"time"
)

type Restaurant struct {
	ID          string `json:"id"`
	OwnerID     string `json:"ownerId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Slug is assigned at creation and never changes afterwards; the
	// public menu URL is derived from it.
	Slug        string `json:"slug"`
	IsActive    bool   `json:"isActive"`
	IsPublished bool   `json:"isPublished"`

	QRCode QRCode `json:"qrCode"`
	Stats  Stats  `json:"stats"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// QRCode holds the stored artifact and the URL it encodes. The encoded
// URL is a snapshot from generation time; regeneration overwrites the
// artifact but keeps ScanCount.
type QRCode struct {
	PNG         []byte     `json:"-"`
	URL         string     `json:"url,omitempty"`
	GeneratedAt *time.Time `json:"generatedAt,omitempty"`
	ScanCount   int64      `json:"scanCount"`
}

type Stats struct {
	TotalMenuViews int64      `json:"totalMenuViews"`
	TotalQRScans   int64      `json:"totalQRScans"`
	LastViewedAt   *time.Time `json:"lastViewedAt,omitempty"`
}

var ErrNotFound = errors.New("restaurant not found")

type CreateRestaurantRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

type UpdateRestaurantRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// PublicMenuURL derives the address the QR code points at. It is computed
// from configuration on every call, never persisted as the source of
// truth.
func PublicMenuURL(baseURL, slug string) string {
	return baseURL + "/menu/" + slug
}
