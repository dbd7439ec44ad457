package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dineqr/menuhub/internal/domain/restaurant"
	"github.com/dineqr/menuhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSlugTaken = errors.New("slug already taken")

type RestaurantsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRestaurantsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RestaurantsRepo {
	return &RestaurantsRepo{pool: pool, prom: prom}
}

func (r *RestaurantsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const restaurantColumns = `id, owner_id, name, description, slug, is_active, is_published,
	qr_url, qr_generated_at, qr_scan_count,
	total_menu_views, total_qr_scans, last_viewed_at,
	created_at, updated_at`

func scanRestaurant(row pgx.Row) (restaurant.Restaurant, error) {
	var rest restaurant.Restaurant

	err := row.Scan(
		&rest.ID,
		&rest.OwnerID,
		&rest.Name,
		&rest.Description,
		&rest.Slug,
		&rest.IsActive,
		&rest.IsPublished,
		&rest.QRCode.URL,
		&rest.QRCode.GeneratedAt,
		&rest.QRCode.ScanCount,
		&rest.Stats.TotalMenuViews,
		&rest.Stats.TotalQRScans,
		&rest.Stats.LastViewedAt,
		&rest.CreatedAt,
		&rest.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return restaurant.Restaurant{}, restaurant.ErrNotFound
		}

		return restaurant.Restaurant{}, err
	}
	return rest, nil
}

func (r *RestaurantsRepo) Create(ctx context.Context, rest restaurant.Restaurant) (restaurant.Restaurant, error) {
	err := r.observe("restaurants.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO restaurants (id, owner_id, name, description, slug, is_active, is_published, created_at, updated_at)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			rest.ID,
			rest.OwnerID,
			rest.Name,
			rest.Description,
			rest.Slug,
			rest.IsActive,
			rest.IsPublished,
			rest.CreatedAt,
			rest.UpdatedAt,
		)
		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return restaurant.Restaurant{}, ErrSlugTaken
		}

		return restaurant.Restaurant{}, err
	}

	return rest, nil
}

// GetByID returns soft-deleted restaurants as not found; an inactive
// restaurant is invisible everywhere regardless of publish state.
func (r *RestaurantsRepo) GetByID(ctx context.Context, id string) (restaurant.Restaurant, error) {
	var rest restaurant.Restaurant

	err := r.observe("restaurants.get_by_id", func() error {
		var err error
		rest, err = scanRestaurant(r.pool.QueryRow(ctx,
			`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1 AND is_active`,
			id,
		))
		return err
	})

	return rest, err
}

func (r *RestaurantsRepo) ListByOwner(ctx context.Context, ownerID string) ([]restaurant.Restaurant, error) {
	var out []restaurant.Restaurant

	err := r.observe("restaurants.list_by_owner", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+restaurantColumns+` FROM restaurants
             WHERE owner_id = $1 AND is_active
             ORDER BY created_at ASC, id ASC`,
			ownerID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out, err = collectRestaurants(rows)
		return err
	})

	return out, err
}

func (r *RestaurantsRepo) ListAllActive(ctx context.Context) ([]restaurant.Restaurant, error) {
	var out []restaurant.Restaurant

	err := r.observe("restaurants.list_all_active", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+restaurantColumns+` FROM restaurants
             WHERE is_active
             ORDER BY created_at ASC, id ASC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out, err = collectRestaurants(rows)
		return err
	})

	return out, err
}

func collectRestaurants(rows pgx.Rows) ([]restaurant.Restaurant, error) {
	out := make([]restaurant.Restaurant, 0)

	for rows.Next() {
		rest, err := scanRestaurant(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, rest)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *RestaurantsRepo) Update(ctx context.Context, id string, req restaurant.UpdateRestaurantRequest) (restaurant.Restaurant, error) {
	var rest restaurant.Restaurant

	err := r.observe("restaurants.update", func() error {
		var err error
		rest, err = scanRestaurant(r.pool.QueryRow(ctx,
			`UPDATE restaurants
                SET name = $2,
                    description = $3,
                    updated_at = NOW()
              WHERE id = $1 AND is_active
          RETURNING `+restaurantColumns,
			id,
			req.Name,
			req.Description,
		))
		return err
	})

	return rest, err
}

func (r *RestaurantsRepo) SoftDelete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("restaurants.soft_delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx,
			`UPDATE restaurants SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`,
			id,
		)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return restaurant.ErrNotFound
	}

	return nil
}

// TogglePublish flips the publish flag in a single statement so two
// concurrent toggles cannot both read the same prior state.
func (r *RestaurantsRepo) TogglePublish(ctx context.Context, id string) (restaurant.Restaurant, error) {
	var rest restaurant.Restaurant

	err := r.observe("restaurants.toggle_publish", func() error {
		var err error
		rest, err = scanRestaurant(r.pool.QueryRow(ctx,
			`UPDATE restaurants
                SET is_published = NOT is_published,
                    updated_at = NOW()
              WHERE id = $1 AND is_active
          RETURNING `+restaurantColumns,
			id,
		))
		return err
	})

	return rest, err
}

// SaveQR overwrites the stored artifact and the URL it encodes. The scan
// counter survives regeneration.
func (r *RestaurantsRepo) SaveQR(ctx context.Context, id string, png []byte, url string, generatedAt time.Time) error {
	var tag pgconn.CommandTag

	err := r.observe("restaurants.save_qr", func() error {
		var err error
		tag, err = r.pool.Exec(ctx,
			`UPDATE restaurants
                SET qr_png = $2,
                    qr_url = $3,
                    qr_generated_at = $4,
                    updated_at = NOW()
              WHERE id = $1 AND is_active`,
			id, png, url, generatedAt,
		)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return restaurant.ErrNotFound
	}

	return nil
}

func (r *RestaurantsRepo) GetQRPNG(ctx context.Context, id string) ([]byte, error) {
	var png []byte

	err := r.observe("restaurants.get_qr_png", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT qr_png FROM restaurants WHERE id = $1 AND is_active`,
			id,
		).Scan(&png)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, restaurant.ErrNotFound
		}

		return nil, err
	}

	return png, nil
}

// GetPublicBySlug resolves a slug for the public surface. Draft and
// deactivated restaurants are indistinguishable from missing ones here.
func (r *RestaurantsRepo) GetPublicBySlug(ctx context.Context, slug string) (restaurant.Restaurant, error) {
	var rest restaurant.Restaurant

	err := r.observe("restaurants.get_public_by_slug", func() error {
		var err error
		rest, err = scanRestaurant(r.pool.QueryRow(ctx,
			`SELECT `+restaurantColumns+` FROM restaurants
             WHERE slug = $1 AND is_active AND is_published`,
			slug,
		))
		return err
	})

	return rest, err
}

// RecordScan bumps both scan counters atomically and returns the slug's
// restaurant so the handler can build the redirect target. Concurrent
// scans each land their own increment; there is no read-modify-write.
func (r *RestaurantsRepo) RecordScan(ctx context.Context, slug string) (restaurant.Restaurant, error) {
	var rest restaurant.Restaurant

	err := r.observe("restaurants.record_scan", func() error {
		var err error
		rest, err = scanRestaurant(r.pool.QueryRow(ctx,
			`UPDATE restaurants
                SET total_qr_scans = total_qr_scans + 1,
                    qr_scan_count = qr_scan_count + 1
              WHERE slug = $1 AND is_active AND is_published
          RETURNING `+restaurantColumns,
			slug,
		))
		return err
	})

	return rest, err
}

// RecordView bumps the menu view counter and the last-viewed timestamp.
func (r *RestaurantsRepo) RecordView(ctx context.Context, id string) error {
	return r.observe("restaurants.record_view", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE restaurants
                SET total_menu_views = total_menu_views + 1,
                    last_viewed_at = NOW()
              WHERE id = $1 AND is_active AND is_published`,
			id,
		)
		return err
	})
}
