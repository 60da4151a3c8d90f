package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHolding_CostPerUnit(t *testing.T) {
	h := Holding{Quantity: decimal.NewFromInt(4), CostTotal: decimal.NewFromInt(1000)}
	assert.True(t, decimal.NewFromInt(250).Equal(h.CostPerUnit()))

	// Zero quantity yields zero instead of dividing by zero
	h.Quantity = decimal.Zero
	assert.True(t, decimal.Zero.Equal(h.CostPerUnit()))
}

func TestHolding_Validate(t *testing.T) {
	valid := func() Holding {
		return Holding{
			ID:          uuid.New(),
			Asset:       Asset{ID: uuid.New()},
			Owner:       Owner{ID: uuid.New()},
			Quantity:    decimal.NewFromInt(10),
			CostTotal:   decimal.NewFromInt(100000),
			AccountType: AccountTypeNISAGrowth,
		}
	}

	h := valid()
	assert.NoError(t, h.Validate())

	h = valid()
	h.Asset.ID = uuid.Nil
	assert.EqualError(t, h.Validate(), "holding must reference an asset")

	h = valid()
	h.Quantity = decimal.NewFromInt(-1)
	assert.EqualError(t, h.Validate(), "holding quantity cannot be negative")

	h = valid()
	h.AccountType = "offshore"
	assert.Error(t, h.Validate())
}

func TestOwner_Validate(t *testing.T) {
	assert.NoError(t, (&Owner{Name: "Me", OwnerType: OwnerTypeSelf}).Validate())
	assert.Error(t, (&Owner{Name: "", OwnerType: OwnerTypeSelf}).Validate())
	assert.Error(t, (&Owner{Name: "Me", OwnerType: "cousin"}).Validate())
}

func TestAsset_Validate(t *testing.T) {
	etf := AssetTypeEquityETF
	us := RegionUS
	bogusType := AssetType("Tulips")

	tests := []struct {
		name    string
		asset   Asset
		wantErr bool
	}{
		{
			name: "Full classification",
			asset: Asset{
				Name:           "Vanguard S&P 500",
				Symbol:         "VOO",
				Classification: Classification{AssetClass: AssetClassEquity, AssetType: &etf, Region: &us},
				Currency:       "USD",
			},
		},
		{
			name: "Asset class only, no symbol",
			asset: Asset{
				Name:           "Savings account",
				Classification: Classification{AssetClass: AssetClassCashEq},
				Currency:       "JPY",
			},
		},
		{
			name: "Unknown asset class",
			asset: Asset{
				Name:           "Mystery",
				Classification: Classification{AssetClass: "Art"},
				Currency:       "JPY",
			},
			wantErr: true,
		},
		{
			name: "Unknown asset type",
			asset: Asset{
				Name:           "Mystery",
				Classification: Classification{AssetClass: AssetClassEquity, AssetType: &bogusType},
				Currency:       "JPY",
			},
			wantErr: true,
		},
		{
			name: "Unknown currency",
			asset: Asset{
				Name:           "Mystery",
				Classification: Classification{AssetClass: AssetClassEquity},
				Currency:       "XYZ1",
			},
			wantErr: true,
		},
		{
			name: "Bad ISIN length",
			asset: Asset{
				Name:           "Mystery",
				Classification: Classification{AssetClass: AssetClassEquity},
				Currency:       "JPY",
				ISIN:           "JP123",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.asset.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFXRates_Rate(t *testing.T) {
	rates := FXRates{
		"USD/JPY": decimal.NewFromInt(150),
		"EUR/JPY": decimal.Zero,
	}

	r, ok := rates.Rate("USD", "JPY")
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(150).Equal(r))

	r, ok = rates.Rate("JPY", "JPY")
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(1).Equal(r))

	// A zero rate counts as missing
	_, ok = rates.Rate("EUR", "JPY")
	assert.False(t, ok)

	_, ok = rates.Rate("GBP", "JPY")
	assert.False(t, ok)
}
