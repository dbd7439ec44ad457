package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dineqr/menuhub/internal/domain/menu"
	"github.com/dineqr/menuhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MenuRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewMenuRepo(pool *pgxpool.Pool, prom *observability.Prom) *MenuRepo {
	return &MenuRepo{pool: pool, prom: prom}
}

func (r *MenuRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const categoryColumns = `id, restaurant_id, name, display_order, is_active, created_at, updated_at`
const itemColumns = `id, restaurant_id, category_id, name, description, price_cents, is_available, created_at, updated_at`

func scanCategory(row pgx.Row) (menu.Category, error) {
	var c menu.Category

	err := row.Scan(
		&c.ID,
		&c.RestaurantID,
		&c.Name,
		&c.DisplayOrder,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return menu.Category{}, menu.ErrCategoryNotFound
		}

		return menu.Category{}, err
	}
	return c, nil
}

func scanItem(row pgx.Row) (menu.Item, error) {
	var it menu.Item

	err := row.Scan(
		&it.ID,
		&it.RestaurantID,
		&it.CategoryID,
		&it.Name,
		&it.Description,
		&it.PriceCents,
		&it.IsAvailable,
		&it.CreatedAt,
		&it.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return menu.Item{}, menu.ErrItemNotFound
		}

		return menu.Item{}, err
	}
	return it, nil
}

func (r *MenuRepo) CreateCategory(ctx context.Context, restaurantID string, req menu.CreateCategoryRequest) (menu.Category, error) {
	now := time.Now().UTC()

	var c menu.Category

	err := r.observe("menu.create_category", func() error {
		var err error
		c, err = scanCategory(r.pool.QueryRow(ctx,
			`INSERT INTO categories (id, restaurant_id, name, display_order, is_active, created_at, updated_at)
             VALUES ($1, $2, $3, $4, TRUE, $5, $5)
             RETURNING `+categoryColumns,
			uuid.NewString(),
			restaurantID,
			req.Name,
			req.DisplayOrder,
			now,
		))
		return err
	})

	return c, err
}

// SeedDefaultCategories runs once per restaurant creation, inside the
// same request.
func (r *MenuRepo) SeedDefaultCategories(ctx context.Context, restaurantID string) error {
	now := time.Now().UTC()

	batch := &pgx.Batch{}

	for i, name := range menu.DefaultCategoryNames {
		batch.Queue(
			`INSERT INTO categories (id, restaurant_id, name, display_order, is_active, created_at, updated_at)
             VALUES ($1, $2, $3, $4, TRUE, $5, $5)`,
			uuid.NewString(), restaurantID, name, i, now,
		)
	}

	return r.observe("menu.seed_default_categories", func() error {
		return r.pool.SendBatch(ctx, batch).Close()
	})
}

// Category and item mutations are always scoped by restaurant id; the
// ownership gate resolved that id from the path, so a category belonging
// to someone else's restaurant comes back not found rather than touched.

func (r *MenuRepo) UpdateCategory(ctx context.Context, restaurantID, categoryID string, req menu.UpdateCategoryRequest) (menu.Category, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	var c menu.Category

	err := r.observe("menu.update_category", func() error {
		var err error
		c, err = scanCategory(r.pool.QueryRow(ctx,
			`UPDATE categories
                SET name = $3,
                    display_order = $4,
                    is_active = $5,
                    updated_at = NOW()
              WHERE id = $2 AND restaurant_id = $1
          RETURNING `+categoryColumns,
			restaurantID,
			categoryID,
			req.Name,
			req.DisplayOrder,
			isActive,
		))
		return err
	})

	return c, err
}

func (r *MenuRepo) DeleteCategory(ctx context.Context, restaurantID, categoryID string) error {
	var tag pgconn.CommandTag

	err := r.observe("menu.delete_category", func() error {
		var err error
		tag, err = r.pool.Exec(ctx,
			`DELETE FROM categories WHERE id = $2 AND restaurant_id = $1`,
			restaurantID, categoryID,
		)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return menu.ErrCategoryNotFound
	}

	return nil
}

func (r *MenuRepo) ListCategories(ctx context.Context, restaurantID string) ([]menu.Category, error) {
	var out []menu.Category

	err := r.observe("menu.list_categories", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+categoryColumns+` FROM categories
             WHERE restaurant_id = $1
             ORDER BY display_order ASC, created_at ASC`,
			restaurantID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]menu.Category, 0)

		for rows.Next() {
			c, err := scanCategory(rows)

			if err != nil {
				return err
			}

			out = append(out, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *MenuRepo) CreateItem(ctx context.Context, restaurantID string, req menu.CreateItemRequest) (menu.Item, error) {
	now := time.Now().UTC()

	// The category has to belong to the same restaurant.
	var categoryExists bool

	err := r.observe("menu.create_item.category_check", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $2 AND restaurant_id = $1)`,
			restaurantID, req.CategoryID,
		).Scan(&categoryExists)
	})

	if err != nil {
		return menu.Item{}, err
	}

	if !categoryExists {
		return menu.Item{}, menu.ErrCategoryNotFound
	}

	var it menu.Item

	err = r.observe("menu.create_item", func() error {
		var err error
		it, err = scanItem(r.pool.QueryRow(ctx,
			`INSERT INTO menu_items (id, restaurant_id, category_id, name, description, price_cents, is_available, created_at, updated_at)
             VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $7)
             RETURNING `+itemColumns,
			uuid.NewString(),
			restaurantID,
			req.CategoryID,
			req.Name,
			req.Description,
			req.PriceCents,
			now,
		))
		return err
	})

	return it, err
}

func (r *MenuRepo) UpdateItem(ctx context.Context, restaurantID, itemID string, req menu.UpdateItemRequest) (menu.Item, error) {
	var it menu.Item

	err := r.observe("menu.update_item", func() error {
		var err error
		it, err = scanItem(r.pool.QueryRow(ctx,
			`UPDATE menu_items
                SET category_id = $3,
                    name = $4,
                    description = $5,
                    price_cents = $6,
                    updated_at = NOW()
              WHERE id = $2 AND restaurant_id = $1
          RETURNING `+itemColumns,
			restaurantID,
			itemID,
			req.CategoryID,
			req.Name,
			req.Description,
			req.PriceCents,
		))
		return err
	})

	return it, err
}

func (r *MenuRepo) DeleteItem(ctx context.Context, restaurantID, itemID string) error {
	var tag pgconn.CommandTag

	err := r.observe("menu.delete_item", func() error {
		var err error
		tag, err = r.pool.Exec(ctx,
			`DELETE FROM menu_items WHERE id = $2 AND restaurant_id = $1`,
			restaurantID, itemID,
		)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return menu.ErrItemNotFound
	}

	return nil
}

func (r *MenuRepo) ToggleItemAvailability(ctx context.Context, restaurantID, itemID string) (menu.Item, error) {
	var it menu.Item

	err := r.observe("menu.toggle_item_availability", func() error {
		var err error
		it, err = scanItem(r.pool.QueryRow(ctx,
			`UPDATE menu_items
                SET is_available = NOT is_available,
                    updated_at = NOW()
              WHERE id = $2 AND restaurant_id = $1
          RETURNING `+itemColumns,
			restaurantID,
			itemID,
		))
		return err
	})

	return it, err
}

func (r *MenuRepo) ListItems(ctx context.Context, restaurantID string) ([]menu.Item, error) {
	var out []menu.Item

	err := r.observe("menu.list_items", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+itemColumns+` FROM menu_items
             WHERE restaurant_id = $1
             ORDER BY created_at ASC, id ASC`,
			restaurantID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]menu.Item, 0)

		for rows.Next() {
			it, err := scanItem(rows)

			if err != nil {
				return err
			}

			out = append(out, it)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// publicMenuRow is one row of the public menu join; the item columns
// are NULL for an empty category.
type publicMenuRow struct {
	categoryID      string
	categoryName    string
	itemName        *string
	itemDescription *string
	priceCents      *int64
}

// foldPublicMenu groups join rows, already ordered by category, into the
// public menu shape. Grouping is by category id, not name: two distinct
// categories may share a name.
func foldPublicMenu(rows []publicMenuRow) []menu.PublicCategory {
	out := make([]menu.PublicCategory, 0, len(rows))

	var lastCategoryID string

	for _, row := range rows {
		if len(out) == 0 || row.categoryID != lastCategoryID {
			out = append(out, menu.PublicCategory{Name: row.categoryName, Items: []menu.PublicItem{}})
			lastCategoryID = row.categoryID
		}

		if row.itemName == nil {
			continue
		}

		item := menu.PublicItem{Name: *row.itemName, PriceCents: *row.priceCents}
		if row.itemDescription != nil {
			item.Description = *row.itemDescription
		}

		out[len(out)-1].Items = append(out[len(out)-1].Items, item)
	}

	return out
}

// ListPublicMenu joins active categories with their available items in
// display order, the shape the public menu page consumes.
func (r *MenuRepo) ListPublicMenu(ctx context.Context, restaurantID string) ([]menu.PublicCategory, error) {
	var out []menu.PublicCategory

	err := r.observe("menu.list_public", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT c.id, c.name, i.name, i.description, i.price_cents
               FROM categories c
               LEFT JOIN menu_items i
                 ON i.category_id = c.id AND i.is_available
              WHERE c.restaurant_id = $1 AND c.is_active
              ORDER BY c.display_order ASC, c.created_at ASC, i.created_at ASC`,
			restaurantID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		collected := make([]publicMenuRow, 0)

		for rows.Next() {
			var row publicMenuRow

			if err := rows.Scan(&row.categoryID, &row.categoryName, &row.itemName, &row.itemDescription, &row.priceCents); err != nil {
				return err
			}

			collected = append(collected, row)
		}

		if err := rows.Err(); err != nil {
			return err
		}

		out = foldPublicMenu(collected)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
