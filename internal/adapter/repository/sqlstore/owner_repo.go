package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

// ownerRepository implements domain.OwnerRepository
type ownerRepository struct {
	db *DB
}

// NewOwnerRepository creates a new owner repository
func NewOwnerRepository(db *DB) domain.OwnerRepository {
	return &ownerRepository{db: db}
}

// GetByID retrieves an owner by its ID
func (r *ownerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	var owner domain.Owner
	var ownerType string

	err := r.db.queryRow(ctx, `SELECT id, name, owner_type FROM owners WHERE id = ?`, id.String()).
		Scan(&owner.ID, &owner.Name, &ownerType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("owner %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	owner.OwnerType = domain.OwnerType(ownerType)

	return &owner, nil
}

// Create creates a new owner
func (r *ownerRepository) Create(ctx context.Context, owner *domain.Owner) error {
	_, err := r.db.exec(ctx,
		`INSERT INTO owners (id, name, owner_type) VALUES (?, ?, ?)`,
		owner.ID.String(), owner.Name, string(owner.OwnerType),
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner: %w", err)
	}
	return nil
}
