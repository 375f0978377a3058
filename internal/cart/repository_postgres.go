package cart

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartQuery    = `SELECT id, user_id, created_at::text, updated_at::text FROM carts WHERE user_id = $1`
	insertCartQuery = `INSERT INTO carts (user_id) VALUES ($1) RETURNING id, user_id, created_at::text, updated_at::text`

	getItemsQuery = `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at::text,
		       p.name, p.price, p.stock, p.image_url
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at DESC, ci.id DESC
	`

	upsertItemQuery = `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, cart_id, product_id, quantity, created_at::text
	`

	updateItemQuery = `
		UPDATE cart_items SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND cart_id = $3
		RETURNING id, cart_id, product_id, quantity, created_at::text
	`

	deleteItemQuery = `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`
	clearItemsQuery = `DELETE FROM cart_items WHERE cart_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetOrCreate(userID int) (Cart, error) {
	var c Cart
	err := r.db.QueryRow(getCartQuery, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return c, nil
	}
	if err != sql.ErrNoRows {
		return Cart{}, err
	}

	err = r.db.QueryRow(insertCartQuery, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (r *PostgresRepository) GetWithItems(userID int) (View, error) {
	c, err := r.GetOrCreate(userID)
	if err != nil {
		return View{}, err
	}

	rows, err := r.db.Query(getItemsQuery, c.ID)
	if err != nil {
		return View{}, err
	}
	defer rows.Close()

	view := View{Cart: c, Items: make([]Item, 0)}
	for rows.Next() {
		var (
			item Item
			img  sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt,
			&item.ProductName, &item.ProductPrice, &item.ProductStock, &img); err != nil {
			return View{}, err
		}
		if img.Valid {
			item.ProductImage = &img.String
		}
		view.Items = append(view.Items, item)
	}
	return view, rows.Err()
}

func (r *PostgresRepository) AddItem(userID, productID, quantity int) (Item, error) {
	c, err := r.GetOrCreate(userID)
	if err != nil {
		return Item{}, err
	}

	var item Item
	err = r.db.QueryRow(upsertItemQuery, c.ID, productID, quantity).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *PostgresRepository) UpdateItemQuantity(userID, itemID, quantity int) (*Item, error) {
	c, err := r.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	var item Item
	err = r.db.QueryRow(updateItemQuery, quantity, itemID, c.ID).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PostgresRepository) RemoveItem(userID, itemID int) (bool, error) {
	c, err := r.GetOrCreate(userID)
	if err != nil {
		return false, err
	}

	res, err := r.db.Exec(deleteItemQuery, itemID, c.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear is idempotent: clearing an already-empty cart succeeds.
func (r *PostgresRepository) Clear(userID int) error {
	c, err := r.GetOrCreate(userID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(clearItemsQuery, c.ID)
	return err
}
