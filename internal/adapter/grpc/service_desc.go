package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified name of the portfolio service
const ServiceName = "assetledger.v1.PortfolioService"

// RPC method names of the portfolio service
const (
	MethodCalculateGain     = "CalculateGain"
	MethodGainReport        = "GainReport"
	MethodCalculateSnapshot = "CalculateSnapshot"
	MethodGetOverview       = "GetOverview"
	MethodRecordTrade       = "RecordTrade"
	MethodTradeSummary      = "TradeSummary"
	MethodListTrades        = "ListTrades"
	MethodDeleteTrade       = "DeleteTrade"
	MethodOpenLots          = "OpenLots"
	MethodHistory           = "History"
	MethodRefreshPrices     = "RefreshPrices"
	MethodCreateAsset       = "CreateAsset"
	MethodListAssets        = "ListAssets"
	MethodCreateOwner       = "CreateOwner"
	MethodCreateHolding     = "CreateHolding"
	MethodListHoldings      = "ListHoldings"
)

// PortfolioServer is the server API for the portfolio service.
// Every RPC takes and returns a google.protobuf.Struct.
type PortfolioServer interface {
	CalculateGain(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GainReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CalculateSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOverview(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordTrade(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TradeSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTrades(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTrade(context.Context, *structpb.Struct) (*structpb.Struct, error)
	OpenLots(context.Context, *structpb.Struct) (*structpb.Struct, error)
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RefreshPrices(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateAsset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAssets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateOwner(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateHolding(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListHoldings(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(PortfolioServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// PortfolioServiceDesc describes the portfolio service for grpc.Server.RegisterService
var PortfolioServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PortfolioServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(MethodCalculateGain, PortfolioServer.CalculateGain),
		unaryMethod(MethodGainReport, PortfolioServer.GainReport),
		unaryMethod(MethodCalculateSnapshot, PortfolioServer.CalculateSnapshot),
		unaryMethod(MethodGetOverview, PortfolioServer.GetOverview),
		unaryMethod(MethodRecordTrade, PortfolioServer.RecordTrade),
		unaryMethod(MethodTradeSummary, PortfolioServer.TradeSummary),
		unaryMethod(MethodListTrades, PortfolioServer.ListTrades),
		unaryMethod(MethodDeleteTrade, PortfolioServer.DeleteTrade),
		unaryMethod(MethodOpenLots, PortfolioServer.OpenLots),
		unaryMethod(MethodHistory, PortfolioServer.History),
		unaryMethod(MethodRefreshPrices, PortfolioServer.RefreshPrices),
		unaryMethod(MethodCreateAsset, PortfolioServer.CreateAsset),
		unaryMethod(MethodListAssets, PortfolioServer.ListAssets),
		unaryMethod(MethodCreateOwner, PortfolioServer.CreateOwner),
		unaryMethod(MethodCreateHolding, PortfolioServer.CreateHolding),
		unaryMethod(MethodListHoldings, PortfolioServer.ListHoldings),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "assetledger/v1/portfolio.proto",
}

// RegisterPortfolioServer registers srv on the given server
func RegisterPortfolioServer(s grpc.ServiceRegistrar, srv PortfolioServer) {
	s.RegisterService(&PortfolioServiceDesc, srv)
}

// FullMethod returns the /service/method path of an RPC
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryMethod(name string, call structCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PortfolioServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(PortfolioServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// PortfolioClient calls the portfolio service over a client connection
type PortfolioClient struct {
	cc grpc.ClientConnInterface
}

// NewPortfolioClient creates a client on cc
func NewPortfolioClient(cc grpc.ClientConnInterface) *PortfolioClient {
	return &PortfolioClient{cc: cc}
}

// Call invokes method with the fields of req
func (c *PortfolioClient) Call(ctx context.Context, method string, req map[string]interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
