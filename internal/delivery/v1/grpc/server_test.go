package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type fakeReportUC struct {
	lastN int
}

func (f *fakeReportUC) TotalSalesByProduct(context.Context) (map[int64]decimal.Decimal, error) {
	return map[int64]decimal.Decimal{
		1: decimal.RequireFromString("1999.98"),
		2: decimal.RequireFromString("699.99"),
	}, nil
}

func (f *fakeReportUC) TopNProductsBySales(_ context.Context, n int) ([]domain.ProductSales, error) {
	f.lastN = n
	if n <= 0 {
		return nil, e.Wrap("ReportUseCase.TopNProductsBySales", e.ErrInvalidTopN)
	}
	return []domain.ProductSales{
		{ProductID: 1, ProductName: "Laptop", TotalSales: decimal.RequireFromString("1999.98")},
	}, nil
}

func (f *fakeReportUC) ExportSalesReport(context.Context, int) (string, error) {
	return "", nil
}

func startServer(t *testing.T, uc *fakeReportUC) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(&cfg.GRPCConfig{}, logger.Nop{})
	srv.RegisterServices(uc, 5)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestTotalSales(t *testing.T) {
	conn := startServer(t, &fakeReportUC{})
	client := NewReportServiceClient(conn)

	resp, err := client.TotalSales(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"1": "1999.98", "2": "699.99"}, resp.AsMap())
}

func TestTopProducts(t *testing.T) {
	uc := &fakeReportUC{}
	conn := startServer(t, uc)
	client := NewReportServiceClient(conn)

	resp, err := client.TopProducts(context.Background(), wrapperspb.Int32(1))
	require.NoError(t, err)
	assert.Equal(t, 1, uc.lastN)

	assert.Equal(t, []any{
		map[string]any{"product_id": float64(1), "product_name": "Laptop", "total_sales": "1999.98"},
	}, resp.AsSlice())
}

func TestTopProductsDefaultsN(t *testing.T) {
	uc := &fakeReportUC{}
	client := NewReportServiceClient(startServer(t, uc))

	_, err := client.TopProducts(context.Background(), &wrapperspb.Int32Value{})
	require.NoError(t, err)
	assert.Equal(t, 5, uc.lastN)
}

func TestTopProductsRejectsNegativeN(t *testing.T) {
	client := NewReportServiceClient(startServer(t, &fakeReportUC{}))

	_, err := client.TopProducts(context.Background(), wrapperspb.Int32(-3))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealth(t *testing.T) {
	conn := startServer(t, &fakeReportUC{})

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: reportServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestGRPCErrorResponse(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{e.ErrInvalidTopN, codes.InvalidArgument},
		{e.ErrProductNotFound, codes.NotFound},
		{e.NewMissingReferencesError("product", []int64{4}), codes.NotFound},
		{e.NewInsufficientStockError(1, 5, 2), codes.FailedPrecondition},
		{context.DeadlineExceeded, codes.Internal},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, status.Code(GRPCErrorResponse(tc.err)), tc.err.Error())
	}
}
