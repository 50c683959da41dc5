package grpc

import (
	"context"
	"strconv"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	reportServiceName     = "catalog.v1.ReportService"
	totalSalesFullMethod  = "/" + reportServiceName + "/TotalSales"
	topProductsFullMethod = "/" + reportServiceName + "/TopProducts"
)

// ReportServiceServer — сервис отчетов поверх well-known типов protobuf.
// TotalSales отдает Struct вида {"<product_id>": "<выручка>"}, TopProducts отдает
// ListValue из Struct {product_id, product_name, total_sales}. Суммы передаются строками.
type ReportServiceServer interface {
	TotalSales(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	TopProducts(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.ListValue, error)
}

var ReportServiceDesc = grpc.ServiceDesc{
	ServiceName: reportServiceName,
	HandlerType: (*ReportServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "TotalSales", Handler: totalSalesHandler},
		{MethodName: "TopProducts", Handler: topProductsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/report.proto",
}

func RegisterReportServiceServer(s grpc.ServiceRegistrar, srv ReportServiceServer) {
	s.RegisterService(&ReportServiceDesc, srv)
}

func totalSalesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).TotalSales(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: totalSalesFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReportServiceServer).TotalSales(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func topProductsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).TopProducts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: topProductsFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReportServiceServer).TopProducts(ctx, req.(*wrapperspb.Int32Value))
	}
	return interceptor(ctx, in, info, handler)
}

// ReportServiceClient — клиент для ReportServiceDesc.
type ReportServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewReportServiceClient(cc grpc.ClientConnInterface) *ReportServiceClient {
	return &ReportServiceClient{cc: cc}
}

func (c *ReportServiceClient) TotalSales(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, totalSalesFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReportServiceClient) TopProducts(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, topProductsFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type ReportService struct {
	reportUC    usecase.ReportUC
	defaultTopN int
	logger      logger.Logger
}

func NewReportService(reportUC usecase.ReportUC, defaultTopN int, logger logger.Logger) *ReportService {
	return &ReportService{reportUC: reportUC, defaultTopN: defaultTopN, logger: logger}
}

func (g *ReportService) TotalSales(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	const op = "grpc.TotalSales"

	totals, err := g.reportUC.TotalSalesByProduct(ctx)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return toGRPCTotals(totals), nil
}

// TopProducts без аргумента использует размер топа по умолчанию.
func (g *ReportService) TopProducts(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.ListValue, error) {
	const op = "grpc.TopProducts"

	n := g.defaultTopN
	if req != nil && req.GetValue() != 0 {
		n = int(req.GetValue())
	}

	top, err := g.reportUC.TopNProductsBySales(ctx, n)
	if err != nil {
		g.logger.Warnf("%s: %v", op, err)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return toGRPCTop(top), nil
}

func toGRPCTotals(totals map[int64]decimal.Decimal) *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(totals))
	for id, total := range totals {
		fields[strconv.FormatInt(id, 10)] = structpb.NewStringValue(total.StringFixed(2))
	}

	return &structpb.Struct{Fields: fields}
}

func toGRPCTop(top []domain.ProductSales) *structpb.ListValue {
	values := make([]*structpb.Value, len(top))
	for i, p := range top {
		values[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"product_id":   structpb.NewNumberValue(float64(p.ProductID)),
			"product_name": structpb.NewStringValue(p.ProductName),
			"total_sales":  structpb.NewStringValue(p.TotalSales.StringFixed(2)),
		}})
	}

	return &structpb.ListValue{Values: values}
}
