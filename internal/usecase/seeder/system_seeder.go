package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

// Fixed UUIDs for system records, never reassigned
var (
	SYS_OWNER_SELF    = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	SYS_ASSET_BITCOIN = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

// SystemSeeder ensures the records every installation starts with exist
type SystemSeeder struct {
	ownerRepo    domain.OwnerRepository
	assetRepo    domain.AssetRepository
	baseCurrency string
}

// NewSystemSeeder creates a new SystemSeeder instance
// The bitcoin asset is denominated in baseCurrency.
func NewSystemSeeder(ownerRepo domain.OwnerRepository, assetRepo domain.AssetRepository, baseCurrency string) *SystemSeeder {
	return &SystemSeeder{
		ownerRepo:    ownerRepo,
		assetRepo:    assetRepo,
		baseCurrency: baseCurrency,
	}
}

// Seed creates the default owner and the bitcoin asset when missing
func (s *SystemSeeder) Seed(ctx context.Context) error {
	if err := s.seedOwner(ctx); err != nil {
		return err
	}
	return s.seedBitcoin(ctx)
}

func (s *SystemSeeder) seedOwner(ctx context.Context) error {
	_, err := s.ownerRepo.GetByID(ctx, SYS_OWNER_SELF)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to look up default owner: %w", err)
	}

	owner := &domain.Owner{
		ID:        SYS_OWNER_SELF,
		Name:      "Self",
		OwnerType: domain.OwnerTypeSelf,
	}
	if err := owner.Validate(); err != nil {
		return err
	}
	return s.ownerRepo.Create(ctx, owner)
}

func (s *SystemSeeder) seedBitcoin(ctx context.Context) error {
	_, err := s.assetRepo.GetByID(ctx, SYS_ASSET_BITCOIN)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to look up bitcoin asset: %w", err)
	}

	assetType := domain.AssetTypeCrypto
	asset := &domain.Asset{
		ID:     SYS_ASSET_BITCOIN,
		Symbol: "bitcoin",
		Name:   "Bitcoin",
		Classification: domain.Classification{
			AssetClass: domain.AssetClassCrypto,
			AssetType:  &assetType,
		},
		Currency: s.baseCurrency,
	}
	if err := asset.Validate(); err != nil {
		return err
	}
	return s.assetRepo.Create(ctx, asset)
}
