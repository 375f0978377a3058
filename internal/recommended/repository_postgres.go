package recommended

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const recordViewQuery = `
	INSERT INTO product_views (user_id, product_id)
	VALUES ($1, $2)
	ON CONFLICT (user_id, product_id)
	DO UPDATE SET view_count = product_views.view_count + 1, viewed_at = NOW()`

// Category affinity: products in categories the user has viewed, weighted by
// how often the user looked at that category, with overall order volume as a
// tiebreaker. The user's own viewed products are excluded.
const affinityQuery = `
	SELECT p.id, p.name, p.price, p.image_url, p.category_id
	FROM products p
	JOIN (
		SELECT pr.category_id, SUM(pv.view_count) AS views
		FROM product_views pv
		JOIN products pr ON pr.id = pv.product_id
		WHERE pv.user_id = $1 AND pr.category_id IS NOT NULL
		GROUP BY pr.category_id
	) affinity ON affinity.category_id = p.category_id
	LEFT JOIN (
		SELECT product_id, SUM(quantity) AS sold
		FROM order_items
		GROUP BY product_id
	) sales ON sales.product_id = p.id
	WHERE p.is_active = TRUE
	  AND p.stock > 0
	  AND p.id NOT IN (SELECT product_id FROM product_views WHERE user_id = $1)
	ORDER BY affinity.views * 10 + COALESCE(sales.sold, 0) DESC, p.id
	LIMIT $2`

const popularQuery = `
	SELECT p.id, p.name, p.price, p.image_url, p.category_id
	FROM products p
	LEFT JOIN (
		SELECT product_id, SUM(quantity) AS sold
		FROM order_items
		GROUP BY product_id
	) sales ON sales.product_id = p.id
	WHERE p.is_active = TRUE AND p.stock > 0
	ORDER BY COALESCE(sales.sold, 0) DESC, p.id
	LIMIT $1`

func (r *PostgresRepository) RecordView(userID, productID int) error {
	_, err := r.db.Exec(recordViewQuery, userID, productID)
	return err
}

func (r *PostgresRepository) ByAffinity(userID, limit int) ([]Item, error) {
	rows, err := r.db.Query(affinityQuery, userID, limit)
	if err != nil {
		return nil, err
	}
	return scanItems(rows, SourceAffinity)
}

func (r *PostgresRepository) Popular(limit int) ([]Item, error) {
	rows, err := r.db.Query(popularQuery, limit)
	if err != nil {
		return nil, err
	}
	return scanItems(rows, SourcePopular)
}

func scanItems(rows *sql.Rows, source string) ([]Item, error) {
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		var (
			item       Item
			imageURL   sql.NullString
			categoryID sql.NullInt64
		)
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &imageURL, &categoryID); err != nil {
			return nil, err
		}
		if imageURL.Valid {
			item.ImageURL = &imageURL.String
		}
		if categoryID.Valid {
			id := int(categoryID.Int64)
			item.CategoryID = &id
		}
		item.Source = source
		out = append(out, item)
	}
	return out, rows.Err()
}
