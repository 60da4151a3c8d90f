package holdings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
)

// CreateHoldingInput represents the input for creating a holding
type CreateHoldingInput struct {
	AssetID         uuid.UUID
	OwnerID         uuid.UUID
	Quantity        decimal.Decimal
	CostTotal       decimal.Decimal
	AcquisitionDate time.Time
	AccountType     domain.AccountType
	Broker          string
	Notes           string
}

// HoldingService registers the assets, owners and positions that valuation runs on
type HoldingService struct {
	AssetRepo   domain.AssetRepository
	OwnerRepo   domain.OwnerRepository
	HoldingRepo domain.HoldingRepository
	log         zerolog.Logger
}

// NewHoldingService creates a new HoldingService instance
func NewHoldingService(
	assetRepo domain.AssetRepository,
	ownerRepo domain.OwnerRepository,
	holdingRepo domain.HoldingRepository,
	log zerolog.Logger,
) *HoldingService {
	return &HoldingService{
		AssetRepo:   assetRepo,
		OwnerRepo:   ownerRepo,
		HoldingRepo: holdingRepo,
		log:         log.With().Str("component", "holdings").Logger(),
	}
}

// CreateAsset validates and stores a new asset
// The currency code is upper-cased before validation.
func (s *HoldingService) CreateAsset(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	asset.Currency = strings.ToUpper(strings.TrimSpace(asset.Currency))
	asset.Symbol = strings.TrimSpace(asset.Symbol)
	if err := asset.Validate(); err != nil {
		return nil, err
	}

	asset.ID = uuid.New()
	if err := s.AssetRepo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	s.log.Info().
		Str("asset_id", asset.ID.String()).
		Str("symbol", asset.Symbol).
		Str("class", string(asset.Classification.AssetClass)).
		Msg("Asset created")

	return asset, nil
}

// CreateOwner validates and stores a new owner
func (s *HoldingService) CreateOwner(ctx context.Context, owner *domain.Owner) (*domain.Owner, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	owner.ID = uuid.New()
	if err := s.OwnerRepo.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}
	return owner, nil
}

// CreateHolding records a position of an existing asset for an existing owner
// Logic:
//  1. Load the asset and the owner (ErrNotFound when either is missing)
//  2. Build and validate the holding
//  3. Persist it
func (s *HoldingService) CreateHolding(ctx context.Context, input CreateHoldingInput) (*domain.Holding, error) {
	asset, err := s.AssetRepo.GetByID(ctx, input.AssetID)
	if err != nil {
		return nil, err
	}
	owner, err := s.OwnerRepo.GetByID(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	holding := &domain.Holding{
		ID:              uuid.New(),
		Asset:           *asset,
		Owner:           *owner,
		Quantity:        input.Quantity,
		CostTotal:       input.CostTotal,
		AcquisitionDate: input.AcquisitionDate,
		AccountType:     input.AccountType,
		Broker:          input.Broker,
		Notes:           input.Notes,
	}
	if err := holding.Validate(); err != nil {
		return nil, err
	}

	if err := s.HoldingRepo.Create(ctx, holding); err != nil {
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}

	s.log.Info().
		Str("holding_id", holding.ID.String()).
		Str("asset", asset.Name).
		Str("quantity", holding.Quantity.String()).
		Msg("Holding created")

	return holding, nil
}

// ListAssets returns every registered asset
func (s *HoldingService) ListAssets(ctx context.Context) ([]*domain.Asset, error) {
	assets, err := s.AssetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

// ListHoldings returns every holding with its asset and owner
func (s *HoldingService) ListHoldings(ctx context.Context) ([]*domain.Holding, error) {
	holdings, err := s.HoldingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return holdings, nil
}
