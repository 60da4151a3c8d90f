package grpc

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/domain"
	"github.com/simaogato/assetledger-backend/internal/usecase/dashboard"
	"github.com/simaogato/assetledger-backend/internal/usecase/gains"
	"github.com/simaogato/assetledger-backend/internal/usecase/holdings"
	"github.com/simaogato/assetledger-backend/internal/usecase/trades"
	"google.golang.org/protobuf/types/known/structpb"
)

const dateLayout = "2006-01-02"

// stringField returns the string value of key, empty when missing
func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// intField reads a number or numeric string
func intField(req *structpb.Struct, key string) (int, bool, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, false, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return int(kind.NumberValue), true, nil
	case *structpb.Value_StringValue:
		n, err := strconv.Atoi(kind.StringValue)
		if err != nil {
			return 0, true, fmt.Errorf("invalid %s: %w", key, err)
		}
		return n, true, nil
	}
	return 0, true, fmt.Errorf("invalid %s: expected a number", key)
}

// decimalField reads a decimal given as a string (preferred) or a number
func decimalField(req *structpb.Struct, key string) (decimal.Decimal, bool, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return decimal.Zero, false, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(kind.StringValue)
		if err != nil {
			return decimal.Zero, true, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, true, nil
	case *structpb.Value_NumberValue:
		return decimal.NewFromFloat(kind.NumberValue), true, nil
	}
	return decimal.Zero, true, fmt.Errorf("invalid %s: expected a decimal", key)
}

// dateField parses a YYYY-MM-DD field
func dateField(req *structpb.Struct, key string) (time.Time, bool, error) {
	s := stringField(req, key)
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, true, nil
}

// timestampField parses an RFC 3339 field
func timestampField(req *structpb.Struct, key string) (time.Time, bool, error) {
	s := stringField(req, key)
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, true, nil
}

func tradeFilterFromStruct(req *structpb.Struct) (domain.TradeFilter, error) {
	var filter domain.TradeFilter

	switch side := stringField(req, "side"); side {
	case "":
		filter.Side = domain.SideAny
	case string(domain.TradeTypeBuy):
		filter.Side = domain.SideBuy
	case string(domain.TradeTypeSell):
		filter.Side = domain.SideSell
	default:
		return filter, fmt.Errorf("invalid side %q", side)
	}

	var err error
	if filter.From, _, err = timestampField(req, "from"); err != nil {
		return filter, err
	}
	if filter.Until, _, err = timestampField(req, "until"); err != nil {
		return filter, err
	}
	return filter, nil
}

func tradeFromStruct(req *structpb.Struct) (*domain.Trade, error) {
	trade := &domain.Trade{
		Exchange: stringField(req, "exchange"),
		Notes:    stringField(req, "notes"),
		Type:     domain.TradeType(stringField(req, "type")),
	}

	if txID := stringField(req, "txid"); txID != "" {
		trade.TxID = &txID
	}

	timestamp, ok, err := timestampField(req, "timestamp")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("timestamp is required")
	}
	trade.Timestamp = timestamp

	amount, ok, err := decimalField(req, "amount")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("amount is required")
	}
	trade.Amount = amount

	for key, dst := range map[string]*decimal.Decimal{
		"counter_value": &trade.CounterValue,
		"rate":          &trade.Rate,
		"fee_btc":       &trade.FeeBTC,
		"fee_base":      &trade.FeeBase,
	} {
		value, _, err := decimalField(req, key)
		if err != nil {
			return nil, err
		}
		*dst = value
	}

	// Rate defaults to the implied price of the trade
	if trade.Rate.IsZero() && trade.CounterValue.IsPositive() && !trade.Amount.IsZero() {
		trade.Rate = trade.CounterValue.Div(trade.Amount.Abs())
	}

	return trade, nil
}

func gainToMap(result *gains.GainResult) map[string]interface{} {
	lots := make([]interface{}, 0, len(result.MatchedLots))
	for _, lot := range result.MatchedLots {
		lots = append(lots, map[string]interface{}{
			"buy_id":        lot.BuyID.String(),
			"buy_date":      lot.BuyDate.Format(time.RFC3339Nano),
			"amount":        lot.Amount.String(),
			"rate":          lot.Rate.String(),
			"cost_per_unit": lot.CostPerUnit.String(),
		})
	}

	return map[string]interface{}{
		"sell_trade_id":  result.SellTradeID.String(),
		"sell_date":      result.SellDate.Format(time.RFC3339Nano),
		"sell_amount":    result.SellAmount.String(),
		"gross_proceeds": result.GrossProceeds.String(),
		"cost_basis":     result.CostBasis.String(),
		"realized_gain":  result.RealizedGain.String(),
		"method":         string(result.Method),
		"matched_lots":   lots,
	}
}

func reportRowToMap(row gains.ReportRow) map[string]interface{} {
	return map[string]interface{}{
		"date":           row.Date,
		"amount":         row.Amount.String(),
		"gross_proceeds": row.GrossProceeds.String(),
		"cost_basis":     row.CostBasis.String(),
		"realized_gain":  row.RealizedGain.String(),
		"exchange":       row.Exchange,
		"method":         string(row.Method),
	}
}

func reportToMap(report *gains.GainReport) map[string]interface{} {
	rows := make([]interface{}, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, reportRowToMap(row))
	}

	out := map[string]interface{}{
		"year":    report.Year,
		"method":  string(report.Method),
		"rows":    rows,
		"skipped": report.Skipped,
	}
	if report.Total != nil {
		out["total"] = reportRowToMap(*report.Total)
	}
	return out
}

func decimalsToMap[M ~map[string]decimal.Decimal](m M) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}

func snapshotToMap(snapshot *domain.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"date":            snapshot.Date.Format(dateLayout),
		"total_base":      snapshot.TotalBase.String(),
		"total_usd":       snapshot.TotalUSD.String(),
		"total_btc":       snapshot.TotalBTC.String(),
		"by_asset_class":  decimalsToMap(snapshot.ByAssetClass),
		"by_currency":     decimalsToMap(snapshot.ByCurrency),
		"by_account_type": decimalsToMap(snapshot.ByAccountType),
		"fx_rates":        decimalsToMap(snapshot.FXRates),
	}
}

func historyToList(points []dashboard.HistoryPoint) []interface{} {
	history := make([]interface{}, 0, len(points))
	for _, point := range points {
		history = append(history, map[string]interface{}{
			"date":       point.Date.Format(dateLayout),
			"total_base": point.TotalBase.String(),
			"total_usd":  point.TotalUSD.String(),
			"total_btc":  point.TotalBTC.String(),
		})
	}
	return history
}

func overviewToMap(overview *dashboard.OverviewResult) map[string]interface{} {
	return map[string]interface{}{
		"latest":            snapshotToMap(overview.Latest),
		"change_24h":        overview.Change24h.String(),
		"change_percentage": overview.ChangePercentage.StringFixed(2),
		"allocation":        decimalsToMap(overview.Allocation),
		"history":           historyToList(overview.History),
	}
}

func tradeToMap(trade *domain.Trade) map[string]interface{} {
	out := map[string]interface{}{
		"id":            trade.ID.String(),
		"amount":        trade.Amount.String(),
		"counter_value": trade.CounterValue.String(),
		"rate":          trade.Rate.String(),
		"fee_btc":       trade.FeeBTC.String(),
		"fee_base":      trade.FeeBase.String(),
		"timestamp":     trade.Timestamp.Format(time.RFC3339Nano),
		"exchange":      trade.Exchange,
		"type":          string(trade.Type),
		"notes":         trade.Notes,
	}
	if trade.TxID != nil {
		out["txid"] = *trade.TxID
	}
	return out
}

func summaryToMap(summary *trades.Summary) map[string]interface{} {
	out := map[string]interface{}{
		"net_btc":          summary.NetBTC.String(),
		"total_bought":     summary.TotalBought.String(),
		"total_sold":       summary.TotalSold.String(),
		"average_buy_rate": summary.AverageBuyRate.StringFixed(0),
	}
	if summary.Latest != nil {
		out["latest"] = tradeToMap(summary.Latest)
	}
	return out
}

func lotsToMap(asOf time.Time, lots []gains.Lot) map[string]interface{} {
	items := make([]interface{}, 0, len(lots))
	total := decimal.Zero
	for _, lot := range lots {
		total = total.Add(lot.Remaining)
		items = append(items, map[string]interface{}{
			"buy_id":    lot.Buy.ID.String(),
			"buy_date":  lot.Buy.Timestamp.Format(time.RFC3339Nano),
			"amount":    lot.Buy.Amount.String(),
			"remaining": lot.Remaining.String(),
			"rate":      lot.Buy.Rate.String(),
		})
	}

	return map[string]interface{}{
		"as_of":           asOf.Format(time.RFC3339Nano),
		"lots":            items,
		"total_remaining": total.String(),
	}
}

// optionalString returns nil for an empty field
func optionalString(req *structpb.Struct, key string) *string {
	v := stringField(req, key)
	if v == "" {
		return nil
	}
	return &v
}

func assetFromStruct(req *structpb.Struct) *domain.Asset {
	asset := &domain.Asset{
		Symbol:   stringField(req, "symbol"),
		Name:     stringField(req, "name"),
		Currency: stringField(req, "currency"),
		Exchange: stringField(req, "exchange"),
		ISIN:     stringField(req, "isin"),
		Classification: domain.Classification{
			AssetClass:  domain.AssetClass(stringField(req, "asset_class")),
			SubCategory: optionalString(req, "sub_category"),
		},
	}
	if v := optionalString(req, "asset_type"); v != nil {
		assetType := domain.AssetType(*v)
		asset.Classification.AssetType = &assetType
	}
	if v := optionalString(req, "region"); v != nil {
		region := domain.Region(*v)
		asset.Classification.Region = &region
	}
	return asset
}

func assetToMap(asset *domain.Asset) map[string]interface{} {
	out := map[string]interface{}{
		"id":          asset.ID.String(),
		"symbol":      asset.Symbol,
		"name":        asset.Name,
		"asset_class": string(asset.Classification.AssetClass),
		"currency":    asset.Currency,
		"exchange":    asset.Exchange,
		"isin":        asset.ISIN,
	}
	if c := asset.Classification; c.AssetType != nil {
		out["asset_type"] = string(*c.AssetType)
	}
	if c := asset.Classification; c.Region != nil {
		out["region"] = string(*c.Region)
	}
	if c := asset.Classification; c.SubCategory != nil {
		out["sub_category"] = *c.SubCategory
	}
	return out
}

func ownerToMap(owner *domain.Owner) map[string]interface{} {
	return map[string]interface{}{
		"id":         owner.ID.String(),
		"name":       owner.Name,
		"owner_type": string(owner.OwnerType),
	}
}

func holdingInputFromStruct(req *structpb.Struct, defaultOwner uuid.UUID) (holdings.CreateHoldingInput, error) {
	input := holdings.CreateHoldingInput{
		OwnerID:     defaultOwner,
		AccountType: domain.AccountType(stringField(req, "account_type")),
		Broker:      stringField(req, "broker"),
		Notes:       stringField(req, "notes"),
	}

	assetID, err := uuid.Parse(stringField(req, "asset_id"))
	if err != nil {
		return input, fmt.Errorf("invalid asset_id format: %w", err)
	}
	input.AssetID = assetID

	if v := stringField(req, "owner_id"); v != "" {
		ownerID, err := uuid.Parse(v)
		if err != nil {
			return input, fmt.Errorf("invalid owner_id format: %w", err)
		}
		input.OwnerID = ownerID
	}

	quantity, ok, err := decimalField(req, "quantity")
	if err != nil {
		return input, err
	}
	if !ok {
		return input, fmt.Errorf("quantity is required")
	}
	input.Quantity = quantity

	if input.CostTotal, _, err = decimalField(req, "cost_total"); err != nil {
		return input, err
	}
	if input.AcquisitionDate, _, err = dateField(req, "acquisition_date"); err != nil {
		return input, err
	}
	return input, nil
}

func holdingToMap(holding *domain.Holding) map[string]interface{} {
	out := map[string]interface{}{
		"id":            holding.ID.String(),
		"asset":         assetToMap(&holding.Asset),
		"owner":         ownerToMap(&holding.Owner),
		"quantity":      holding.Quantity.String(),
		"cost_total":    holding.CostTotal.String(),
		"cost_per_unit": holding.CostPerUnit().String(),
		"account_type":  string(holding.AccountType),
		"broker":        holding.Broker,
		"notes":         holding.Notes,
	}
	if !holding.AcquisitionDate.IsZero() {
		out["acquisition_date"] = holding.AcquisitionDate.Format(dateLayout)
	}
	return out
}
