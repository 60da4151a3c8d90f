package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/assetledger-backend/internal/domain"
	"github.com/simaogato/assetledger-backend/internal/usecase/dashboard"
	"github.com/simaogato/assetledger-backend/internal/usecase/gains"
	"github.com/simaogato/assetledger-backend/internal/usecase/holdings"
	"github.com/simaogato/assetledger-backend/internal/usecase/pricing"
	"github.com/simaogato/assetledger-backend/internal/usecase/seeder"
	"github.com/simaogato/assetledger-backend/internal/usecase/trades"
	"github.com/simaogato/assetledger-backend/internal/usecase/valuation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ PortfolioServer = (*Server)(nil)

// Server implements the PortfolioServer interface
type Server struct {
	GainService      *gains.GainService
	ValuationService *valuation.ValuationService
	DashboardService *dashboard.DashboardService
	TradeService     *trades.TradeService
	HoldingService   *holdings.HoldingService
	RefreshService   *pricing.RefreshService
}

// NewServer creates a new gRPC server instance
func NewServer(
	gainService *gains.GainService,
	valuationService *valuation.ValuationService,
	dashboardService *dashboard.DashboardService,
	tradeService *trades.TradeService,
	holdingService *holdings.HoldingService,
	refreshService *pricing.RefreshService,
) *Server {
	return &Server{
		GainService:      gainService,
		ValuationService: valuationService,
		DashboardService: dashboardService,
		TradeService:     tradeService,
		HoldingService:   holdingService,
		RefreshService:   refreshService,
	}
}

// CalculateGain handles the CalculateGain RPC
// Request: trade_id, method (FIFO or HIFO, default FIFO)
func (s *Server) CalculateGain(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tradeID, err := uuid.Parse(stringField(req, "trade_id"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid trade_id format: %v", err)
	}

	method, err := domain.ParseCostBasisMethod(stringField(req, "method"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	result, err := s.GainService.CalculateRealizedGainByID(ctx, tradeID, method)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(gainToMap(result))
}

// GainReport handles the GainReport RPC
// Request: year, method
func (s *Server) GainReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	year, ok, err := intField(req, "year")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if !ok || year <= 0 {
		return nil, status.Error(codes.InvalidArgument, "year is required")
	}

	method, err := domain.ParseCostBasisMethod(stringField(req, "method"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	report, err := s.GainService.GenerateGainReport(ctx, year, method)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(reportToMap(report))
}

// CalculateSnapshot handles the CalculateSnapshot RPC
// Request: date (YYYY-MM-DD, default today), store (bool)
// When a snapshot already exists for the date only {date, exists: true} is returned.
func (s *Server) CalculateSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	date, ok, err := dateField(req, "date")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if !ok {
		date = s.ValuationService.Today()
	}

	var snapshot *domain.Snapshot
	if req.GetFields()["store"].GetBoolValue() {
		snapshot, err = s.ValuationService.RecordDailySnapshot(ctx, date)
	} else {
		snapshot, err = s.ValuationService.CalculateSnapshot(ctx, date)
	}
	if err != nil {
		return nil, mapError(err)
	}

	if snapshot == nil {
		return respond(map[string]interface{}{
			"date":   date.Format(dateLayout),
			"exists": true,
		})
	}

	out := snapshotToMap(snapshot)
	out["exists"] = false
	out["base_currency"] = s.ValuationService.BaseCurrency()
	return respond(out)
}

// GetOverview handles the GetOverview RPC
// Request: history_days (default 365)
func (s *Server) GetOverview(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	days, _, err := intField(req, "history_days")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	overview, err := s.DashboardService.GetOverview(ctx, days)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(overviewToMap(overview))
}

// RecordTrade handles the RecordTrade RPC
// Request: amount (signed BTC), counter_value, rate, fee_btc, fee_base,
// timestamp (RFC 3339), txid, exchange, type, notes
func (s *Server) RecordTrade(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	trade, err := tradeFromStruct(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	recorded, err := s.TradeService.RecordTrade(ctx, trade)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(tradeToMap(recorded))
}

// TradeSummary handles the TradeSummary RPC
func (s *Server) TradeSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	summary, err := s.TradeService.Summary(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(summaryToMap(summary))
}

// ListTrades handles the ListTrades RPC
// Request: side (buy, sell or empty for both), from and until (RFC 3339, inclusive)
func (s *Server) ListTrades(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter, err := tradeFilterFromStruct(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	list, err := s.TradeService.ListTrades(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]interface{}, 0, len(list))
	for _, trade := range list {
		items = append(items, tradeToMap(trade))
	}
	return respond(map[string]interface{}{"trades": items})
}

// DeleteTrade handles the DeleteTrade RPC
// Request: trade_id
func (s *Server) DeleteTrade(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tradeID, err := uuid.Parse(stringField(req, "trade_id"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid trade_id format: %v", err)
	}

	if err := s.TradeService.DeleteTrade(ctx, tradeID); err != nil {
		return nil, mapError(err)
	}

	return respond(map[string]interface{}{"trade_id": tradeID.String(), "deleted": true})
}

// OpenLots handles the OpenLots RPC
// Request: as_of (RFC 3339, default now)
func (s *Server) OpenLots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	asOf, ok, err := timestampField(req, "as_of")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if !ok {
		asOf = time.Now()
	}

	lots, err := s.GainService.OpenLots(ctx, asOf)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(lotsToMap(asOf, lots))
}

// History handles the History RPC
// Request: days (default 365)
func (s *Server) History(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	days, _, err := intField(req, "days")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	points, err := s.DashboardService.History(ctx, days)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(map[string]interface{}{"history": historyToList(points)})
}

// RefreshPrices handles the RefreshPrices RPC
// Runs the daily price refresh immediately.
func (s *Server) RefreshPrices(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.RefreshService.RefreshDailyPrices(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(map[string]interface{}{
		"fetched": result.Fetched,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	})
}

// CreateAsset handles the CreateAsset RPC
// Request: name, asset_class, currency, symbol, asset_type, region,
// sub_category, exchange, isin
func (s *Server) CreateAsset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	asset, err := s.HoldingService.CreateAsset(ctx, assetFromStruct(req))
	if err != nil {
		return nil, mapError(err)
	}

	return respond(assetToMap(asset))
}

// ListAssets handles the ListAssets RPC
func (s *Server) ListAssets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	assets, err := s.HoldingService.ListAssets(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]interface{}, 0, len(assets))
	for _, asset := range assets {
		items = append(items, assetToMap(asset))
	}
	return respond(map[string]interface{}{"assets": items})
}

// CreateOwner handles the CreateOwner RPC
// Request: name, owner_type
func (s *Server) CreateOwner(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	owner, err := s.HoldingService.CreateOwner(ctx, &domain.Owner{
		Name:      stringField(req, "name"),
		OwnerType: domain.OwnerType(stringField(req, "owner_type")),
	})
	if err != nil {
		return nil, mapError(err)
	}

	return respond(ownerToMap(owner))
}

// CreateHolding handles the CreateHolding RPC
// Request: asset_id, owner_id (default: the system owner), quantity, cost_total,
// acquisition_date (YYYY-MM-DD), account_type, broker, notes
func (s *Server) CreateHolding(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := holdingInputFromStruct(req, seeder.SYS_OWNER_SELF)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	holding, err := s.HoldingService.CreateHolding(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	return respond(holdingToMap(holding))
}

// ListHoldings handles the ListHoldings RPC
func (s *Server) ListHoldings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.HoldingService.ListHoldings(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]interface{}, 0, len(list))
	for _, holding := range list {
		items = append(items, holdingToMap(holding))
	}
	return respond(map[string]interface{}{"holdings": items})
}

func respond(fields map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, errorMsg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, errorMsg)
	case errors.Is(err, domain.ErrInvalidTradeDirection):
		return status.Error(codes.InvalidArgument, errorMsg)
	case errors.Is(err, domain.ErrNoPriorBuys), errors.Is(err, domain.ErrInsufficientLots):
		return status.Error(codes.FailedPrecondition, errorMsg)
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, errorMsg)
	case errors.Is(err, domain.ErrDuplicateTxID), errors.Is(err, domain.ErrSnapshotExists):
		return status.Error(codes.AlreadyExists, errorMsg)
	case errors.Is(err, domain.ErrPriceUnavailable), errors.Is(err, domain.ErrRateUnavailable):
		return status.Error(codes.Unavailable, errorMsg)
	}

	// Validation errors from the domain are plain messages
	if strings.Contains(errorMsg, "cannot be") ||
		strings.Contains(errorMsg, "is required") ||
		strings.Contains(errorMsg, "invalid") ||
		strings.Contains(errorMsg, "unknown currency") ||
		strings.Contains(errorMsg, "must be") ||
		strings.Contains(errorMsg, "must reference") {
		return status.Error(codes.InvalidArgument, errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Error(codes.Internal, errorMsg)
}
