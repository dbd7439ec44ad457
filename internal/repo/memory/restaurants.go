package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dineqr/menuhub/internal/domain/restaurant"
)

// RestaurantsRepo mirrors the postgres repo's semantics in memory. Tests
// use it where spinning up postgres would be overkill; the counter
// operations hold the lock for the whole increment so the no-lost-update
// property survives here too.
type RestaurantsRepo struct {
	mu    sync.RWMutex
	items map[string]restaurant.Restaurant
}

func NewRestaurantsRepo() *RestaurantsRepo {
	return &RestaurantsRepo{
		items: make(map[string]restaurant.Restaurant),
	}
}

func (r *RestaurantsRepo) Create(_ context.Context, rest restaurant.Restaurant) (restaurant.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[rest.ID] = rest

	return rest, nil
}

func (r *RestaurantsRepo) GetByID(_ context.Context, id string) (restaurant.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rest, ok := r.items[id]
	if !ok || !rest.IsActive {
		return restaurant.Restaurant{}, restaurant.ErrNotFound
	}

	return rest, nil
}

func (r *RestaurantsRepo) ListByOwner(_ context.Context, ownerID string) ([]restaurant.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]restaurant.Restaurant, 0)

	for _, rest := range r.items {
		if rest.IsActive && rest.OwnerID == ownerID {
			out = append(out, rest)
		}
	}

	return out, nil
}

func (r *RestaurantsRepo) ListAllActive(_ context.Context) ([]restaurant.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]restaurant.Restaurant, 0)

	for _, rest := range r.items {
		if rest.IsActive {
			out = append(out, rest)
		}
	}

	return out, nil
}

func (r *RestaurantsRepo) Update(_ context.Context, id string, req restaurant.UpdateRestaurantRequest) (restaurant.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rest, ok := r.items[id]
	if !ok || !rest.IsActive {
		return restaurant.Restaurant{}, restaurant.ErrNotFound
	}

	rest.Name = req.Name
	rest.Description = req.Description
	rest.UpdatedAt = time.Now().UTC()
	r.items[id] = rest

	return rest, nil
}

func (r *RestaurantsRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rest, ok := r.items[id]
	if !ok || !rest.IsActive {
		return restaurant.ErrNotFound
	}

	rest.IsActive = false
	rest.UpdatedAt = time.Now().UTC()
	r.items[id] = rest

	return nil
}

func (r *RestaurantsRepo) TogglePublish(_ context.Context, id string) (restaurant.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rest, ok := r.items[id]
	if !ok || !rest.IsActive {
		return restaurant.Restaurant{}, restaurant.ErrNotFound
	}

	rest.IsPublished = !rest.IsPublished
	rest.UpdatedAt = time.Now().UTC()
	r.items[id] = rest

	return rest, nil
}

func (r *RestaurantsRepo) SaveQR(_ context.Context, id string, png []byte, url string, generatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rest, ok := r.items[id]
	if !ok || !rest.IsActive {
		return restaurant.ErrNotFound
	}

	rest.QRCode.PNG = png
	rest.QRCode.URL = url
	rest.QRCode.GeneratedAt = &generatedAt
	rest.UpdatedAt = time.Now().UTC()
	r.items[id] = rest

	return nil
}

func (r *RestaurantsRepo) GetQRPNG(_ context.Context, id string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rest, ok := r.items[id]
	if !ok || !rest.IsActive {
		return nil, restaurant.ErrNotFound
	}

	return rest.QRCode.PNG, nil
}

func (r *RestaurantsRepo) GetPublicBySlug(_ context.Context, slug string) (restaurant.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rest := range r.items {
		if rest.Slug == slug && rest.IsActive && rest.IsPublished {
			return rest, nil
		}
	}

	return restaurant.Restaurant{}, restaurant.ErrNotFound
}

func (r *RestaurantsRepo) RecordScan(_ context.Context, slug string) (restaurant.Restaurant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rest := range r.items {
		if rest.Slug == slug && rest.IsActive && rest.IsPublished {
			rest.Stats.TotalQRScans++
			rest.QRCode.ScanCount++
			r.items[id] = rest
			return rest, nil
		}
	}

	return restaurant.Restaurant{}, restaurant.ErrNotFound
}

func (r *RestaurantsRepo) RecordView(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rest, ok := r.items[id]
	if !ok || !rest.IsActive || !rest.IsPublished {
		return nil
	}

	now := time.Now().UTC()
	rest.Stats.TotalMenuViews++
	rest.Stats.LastViewedAt = &now
	r.items[id] = rest

	return nil
}
