package order

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ichiba-dev/ichiba-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	insertOrderQuery = `
		INSERT INTO orders (user_id, address_id, total_amount, status, payment_method, stripe_session_id, stripe_payment_intent_id)
		VALUES ($1, $2, $3, 'pending', $4, $5, $6)
		RETURNING id, created_at::text, updated_at::text`

	insertOrderItemQuery = `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	// Guarded decrement: the WHERE clause makes oversell impossible even
	// under concurrent checkouts. Zero rows affected means stock ran out.
	decrementStockQuery = `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND is_active = TRUE AND stock >= $1`

	confirmOrderQuery = `
		UPDATE orders SET status = 'confirmed', updated_at = NOW() WHERE id = $1`

	clearCartQuery = `
		DELETE FROM cart_items
		USING carts
		WHERE cart_items.cart_id = carts.id AND carts.user_id = $1`

	orderColumns = `id, user_id, address_id, total_amount, status, payment_method,
		COALESCE(stripe_session_id, ''), COALESCE(stripe_payment_intent_id, ''),
		created_at::text, updated_at::text`

	orderItemsQuery = `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var ord Order
	err := row.Scan(&ord.ID, &ord.UserID, &ord.AddressID, &ord.TotalAmount, &ord.Status,
		&ord.PaymentMethod, &ord.StripeSessionID, &ord.StripePaymentIntentID,
		&ord.CreatedAt, &ord.UpdatedAt)
	return ord, err
}

// Create materializes a paid checkout session into an order in a single
// transaction. The unique index on stripe_session_id is the idempotency
// guard: a concurrent duplicate fails the insert with a unique violation,
// which the caller translates into a refetch of the winner's order.
func (r *PostgresRepository) Create(ctx context.Context, ord Order, items []Item) (WithItems, error) {
	out := WithItems{Order: ord}
	out.Status = StatusConfirmed

	err := database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		sessionID := sql.NullString{String: ord.StripeSessionID, Valid: ord.StripeSessionID != ""}
		intentID := sql.NullString{String: ord.StripePaymentIntentID, Valid: ord.StripePaymentIntentID != ""}

		err := tx.QueryRowContext(ctx, insertOrderQuery,
			ord.UserID, ord.AddressID, ord.TotalAmount, ord.PaymentMethod, sessionID, intentID,
		).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
		if err != nil {
			return err
		}

		out.Items = make([]Item, 0, len(items))
		for _, it := range items {
			it.OrderID = out.ID
			if err := tx.QueryRowContext(ctx, insertOrderItemQuery,
				out.ID, it.ProductID, it.Quantity, it.Price).Scan(&it.ID); err != nil {
				return fmt.Errorf("insert order item for product %d: %w", it.ProductID, err)
			}

			res, err := tx.ExecContext(ctx, decrementStockQuery, it.Quantity, it.ProductID)
			if err != nil {
				return fmt.Errorf("decrement stock for product %d: %w", it.ProductID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrInsufficientStock
			}
			out.Items = append(out.Items, it)
		}

		if _, err := tx.ExecContext(ctx, confirmOrderQuery, out.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, clearCartQuery, ord.UserID); err != nil {
			return fmt.Errorf("clear cart for user %d: %w", ord.UserID, err)
		}
		return nil
	})
	if err != nil {
		return WithItems{}, err
	}
	return out, nil
}

func (r *PostgresRepository) FindBySessionID(ctx context.Context, sessionID string) (WithItems, error) {
	ord, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE stripe_session_id = $1`, sessionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return WithItems{}, ErrNotFound
		}
		return WithItems{}, err
	}
	return r.withItems(ctx, ord)
}

func (r *PostgresRepository) FindByID(ctx context.Context, userID, orderID int) (WithItems, error) {
	ord, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, orderID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return WithItems{}, ErrNotFound
		}
		return WithItems{}, err
	}
	return r.withItems(ctx, ord)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ord)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) withItems(ctx context.Context, ord Order) (WithItems, error) {
	rows, err := r.db.QueryContext(ctx, orderItemsQuery, ord.ID)
	if err != nil {
		return WithItems{}, err
	}
	defer rows.Close()

	out := WithItems{Order: ord, Items: make([]Item, 0)}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return WithItems{}, err
		}
		out.Items = append(out.Items, it)
	}
	return out, rows.Err()
}
