package address

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const addressColumns = `id, user_id, full_name, postal_code, prefecture, city, address_line, building, phone_number, created_at::text, updated_at::text`

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAddress(row interface{ Scan(dest ...any) error }) (Address, error) {
	var (
		a        Address
		building sql.NullString
	)
	err := row.Scan(&a.ID, &a.UserID, &a.FullName, &a.PostalCode, &a.Prefecture, &a.City,
		&a.AddressLine, &building, &a.PhoneNumber, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Address{}, err
	}
	if building.Valid {
		a.Building = &building.String
	}
	return a, nil
}

func (r *PostgresRepository) List(userID int) ([]Address, error) {
	rows, err := r.db.Query(`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(userID, addressID int) (Address, error) {
	a, err := scanAddress(r.db.QueryRow(
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`, addressID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Address{}, ErrNotFound
		}
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Create(a Address) (Address, error) {
	err := r.db.QueryRow(
		`INSERT INTO addresses (user_id, full_name, postal_code, prefecture, city, address_line, building, phone_number)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at::text, updated_at::text`,
		a.UserID, a.FullName, a.PostalCode, a.Prefecture, a.City, a.AddressLine, a.Building, a.PhoneNumber,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Update(userID, addressID int, a Address) (Address, error) {
	updated, err := scanAddress(r.db.QueryRow(
		`UPDATE addresses
		 SET full_name = $1, postal_code = $2, prefecture = $3, city = $4, address_line = $5, building = $6, phone_number = $7, updated_at = NOW()
		 WHERE id = $8 AND user_id = $9
		 RETURNING `+addressColumns,
		a.FullName, a.PostalCode, a.Prefecture, a.City, a.AddressLine, a.Building, a.PhoneNumber, addressID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Address{}, ErrNotFound
		}
		return Address{}, err
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(userID, addressID int) error {
	res, err := r.db.Exec(`DELETE FROM addresses WHERE id = $1 AND user_id = $2`, addressID, userID)
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
