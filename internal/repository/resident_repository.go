package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/rims/internal/model"
)

// ResidentRepo maintains the resident table, which pairs a user with the
// property they currently occupy.
type ResidentRepo struct {
	db *sql.DB
}

func NewResidentRepo(db *sql.DB) *ResidentRepo { return &ResidentRepo{db: db} }

// AddTx inserts the pair. A second insert of the same pair fails with
// ErrDuplicate.
func (r *ResidentRepo) AddTx(ctx context.Context, tx *sql.Tx, res model.Resident) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO resident (user_id, property_id) VALUES (?, ?)`, res.UserID, res.PropertyID)
	return classify(err)
}

// RemoveTx deletes the pair. Removing an absent pair is not an error.
func (r *ResidentRepo) RemoveTx(ctx context.Context, tx *sql.Tx, res model.Resident) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM resident WHERE user_id = ? AND property_id = ?`, res.UserID, res.PropertyID)
	return classify(err)
}

// ListByProperty returns the user ids residing at a property.
func (r *ResidentRepo) ListByProperty(ctx context.Context, propertyID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM resident WHERE property_id = ? ORDER BY user_id`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
