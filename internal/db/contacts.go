package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/restapp/backend/internal/model"
)

const contactColumns = `id, first_name, last_name, email, phone,
	COALESCE(to_char(birthday, 'YYYY-MM-DD'), ''), additional_info, owner_id`

func scanContact(row rowScanner) (*model.Contact, error) {
	var c model.Contact
	if err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Birthday,
		&c.AdditionalInfo,
		&c.OwnerID,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *Postgres) CreateContact(ctx context.Context, ownerID int64, req model.ContactRequest) (*model.Contact, error) {
	query := `
		INSERT INTO contacts (first_name, last_name, email, phone, birthday, additional_info, owner_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::date, $6, $7)
		RETURNING ` + contactColumns
	return scanContact(db.Pool.QueryRow(ctx, query,
		req.FirstName, req.LastName, req.Email, req.Phone, req.Birthday, req.AdditionalInfo, ownerID))
}

func (db *Postgres) ListContacts(ctx context.Context, ownerID int64, filter model.ContactFilter) ([]model.Contact, error) {
	var (
		where = []string{"owner_id = $1"}
		args  = []any{ownerID}
	)
	if name := strings.TrimSpace(filter.Name); name != "" {
		args = append(args, "%"+name+"%")
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d)", len(args), len(args)))
	}
	if email := strings.TrimSpace(filter.Email); email != "" {
		args = append(args, "%"+email+"%")
		where = append(where, fmt.Sprintf("email ILIKE $%d", len(args)))
	}

	query := `SELECT ` + contactColumns + ` FROM contacts WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

func (db *Postgres) GetContact(ctx context.Context, ownerID, contactID int64) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND owner_id = $2`
	return scanContact(db.Pool.QueryRow(ctx, query, contactID, ownerID))
}

func (db *Postgres) UpdateContact(ctx context.Context, ownerID, contactID int64, req model.ContactRequest) (*model.Contact, error) {
	query := `
		UPDATE contacts
		SET first_name = $3, last_name = $4, email = $5, phone = $6,
			birthday = NULLIF($7, '')::date, additional_info = $8
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + contactColumns
	return scanContact(db.Pool.QueryRow(ctx, query,
		contactID, ownerID, req.FirstName, req.LastName, req.Email, req.Phone, req.Birthday, req.AdditionalInfo))
}

// DeleteContact reports whether a row owned by ownerID was removed.
func (db *Postgres) DeleteContact(ctx context.Context, ownerID, contactID int64) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1 AND owner_id = $2`, contactID, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
