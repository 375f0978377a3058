package review

import (
	"database/sql"

	"github.com/ichiba-dev/ichiba-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const listReviewsQuery = `
	SELECT r.id, r.product_id, r.user_id, r.rating, r.comment, r.created_at::text, r.updated_at::text, u.display_name
	FROM reviews r
	JOIN users u ON u.id = r.user_id
	WHERE r.product_id = $1
	ORDER BY r.created_at DESC`

func (r *PostgresRepository) ListByProduct(productID int) (Summary, error) {
	rows, err := r.db.Query(listReviewsQuery, productID)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	out := Summary{Reviews: []Review{}}
	total := 0
	for rows.Next() {
		var (
			rv      Review
			comment sql.NullString
		)
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &comment,
			&rv.CreatedAt, &rv.UpdatedAt, &rv.DisplayName); err != nil {
			return Summary{}, err
		}
		if comment.Valid {
			rv.Comment = &comment.String
		}
		out.Reviews = append(out.Reviews, rv)
		total += rv.Rating
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}
	out.ReviewCount = len(out.Reviews)
	if out.ReviewCount > 0 {
		out.AverageRating = float64(total) / float64(out.ReviewCount)
	}
	return out, nil
}

func (r *PostgresRepository) Create(rv Review) (Review, error) {
	err := r.db.QueryRow(
		`INSERT INTO reviews (product_id, user_id, rating, comment)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at::text, updated_at::text`,
		rv.ProductID, rv.UserID, rv.Rating, rv.Comment,
	).Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Review{}, ErrAlreadyExists
		}
		return Review{}, err
	}
	return rv, nil
}

func (r *PostgresRepository) Update(userID, reviewID int, rating int, comment *string) (Review, error) {
	var rv Review
	var storedComment sql.NullString
	err := r.db.QueryRow(
		`UPDATE reviews SET rating = $1, comment = $2, updated_at = NOW()
		 WHERE id = $3 AND user_id = $4
		 RETURNING id, product_id, user_id, rating, comment, created_at::text, updated_at::text`,
		rating, comment, reviewID, userID,
	).Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &storedComment, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	if storedComment.Valid {
		rv.Comment = &storedComment.String
	}
	return rv, nil
}

func (r *PostgresRepository) Delete(userID, reviewID int) error {
	res, err := r.db.Exec(`DELETE FROM reviews WHERE id = $1 AND user_id = $2`, reviewID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
