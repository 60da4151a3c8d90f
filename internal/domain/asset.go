package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
)

// AssetClass is the top-level classification of an asset
type AssetClass string

const (
	AssetClassCashEq      AssetClass = "CashEq"
	AssetClassFixedIncome AssetClass = "FixedIncome"
	AssetClassEquity      AssetClass = "Equity"
	AssetClassRealAsset   AssetClass = "RealAsset"
	AssetClassCrypto      AssetClass = "Crypto"
)

// AssetType refines an AssetClass
type AssetType string

const (
	AssetTypeSavings     AssetType = "Savings"
	AssetTypeMMF         AssetType = "MMF"
	AssetTypeStablecoin  AssetType = "Stablecoin"
	AssetTypeGovBond     AssetType = "GovBond"
	AssetTypeCorpBond    AssetType = "CorpBond"
	AssetTypeBondETF     AssetType = "BondETF"
	AssetTypeDirectStock AssetType = "DirectStock"
	AssetTypeEquityETF   AssetType = "EquityETF"
	AssetTypeMutualFund  AssetType = "MutualFund"
	AssetTypeREIT        AssetType = "REIT"
	AssetTypeCommodity   AssetType = "Commodity"
	AssetTypeGoldETF     AssetType = "GoldETF"
	AssetTypeCrypto      AssetType = "Crypto"
)

// Region is the geographic exposure of an asset
type Region string

const (
	RegionUS Region = "US"
	RegionJP Region = "JP"
	RegionEU Region = "EU"
	RegionEM Region = "EM"
	RegionGL Region = "GL"
)

var (
	validAssetClasses = map[AssetClass]bool{
		AssetClassCashEq: true, AssetClassFixedIncome: true, AssetClassEquity: true,
		AssetClassRealAsset: true, AssetClassCrypto: true,
	}
	validAssetTypes = map[AssetType]bool{
		AssetTypeSavings: true, AssetTypeMMF: true, AssetTypeStablecoin: true,
		AssetTypeGovBond: true, AssetTypeCorpBond: true, AssetTypeBondETF: true,
		AssetTypeDirectStock: true, AssetTypeEquityETF: true, AssetTypeMutualFund: true,
		AssetTypeREIT: true, AssetTypeCommodity: true, AssetTypeGoldETF: true, AssetTypeCrypto: true,
	}
	validRegions = map[Region]bool{
		RegionUS: true, RegionJP: true, RegionEU: true, RegionEM: true, RegionGL: true,
	}
)

// Classification tags an asset. AssetClass is required, the rest is optional.
type Classification struct {
	AssetClass  AssetClass
	AssetType   *AssetType
	Region      *Region
	SubCategory *string
}

// Validate checks every set field against its enumeration
func (c Classification) Validate() error {
	if !validAssetClasses[c.AssetClass] {
		return fmt.Errorf("invalid asset class %q", c.AssetClass)
	}
	if c.AssetType != nil && !validAssetTypes[*c.AssetType] {
		return fmt.Errorf("invalid asset type %q", *c.AssetType)
	}
	if c.Region != nil && !validRegions[*c.Region] {
		return fmt.Errorf("invalid region %q", *c.Region)
	}
	return nil
}

// Asset identifies a tradable or holdable instrument
type Asset struct {
	ID             uuid.UUID
	Symbol         string // Empty for non-ticker assets (savings, some funds)
	Name           string
	Classification Classification
	Currency       string // ISO-4217 denomination
	Exchange       string
	ISIN           string
}

// HasSymbol reports whether prices can be looked up by ticker
func (a *Asset) HasSymbol() bool {
	return strings.TrimSpace(a.Symbol) != ""
}

// IsCrypto reports whether the asset is classified as crypto
func (a *Asset) IsCrypto() bool {
	return a.Classification.AssetClass == AssetClassCrypto
}

// Validate ensures the asset adheres to domain rules
func (a *Asset) Validate() error {
	if a.Name == "" {
		return errors.New("asset name cannot be empty")
	}
	if err := a.Classification.Validate(); err != nil {
		return err
	}
	if !IsKnownCurrency(a.Currency) {
		return fmt.Errorf("unknown currency %q", a.Currency)
	}
	if a.ISIN != "" && len(a.ISIN) != 12 {
		return errors.New("isin must be 12 characters")
	}
	return nil
}

// IsKnownCurrency reports whether code is an ISO-4217 currency code
func IsKnownCurrency(code string) bool {
	return code != "" && money.GetCurrency(strings.ToUpper(code)) != nil
}
