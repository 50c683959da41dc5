package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/catalog-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/catalog-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/catalog-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/catalog-backend/internal/infrastructure/kafka"
	s3Repo "github.com/DRSN-tech/catalog-backend/internal/repository/minio"
	"github.com/DRSN-tech/catalog-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/catalog-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-backend/internal/repository/redis"
	redisConv "github.com/DRSN-tech/catalog-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/clients"
	"github.com/DRSN-tech/catalog-backend/pkg/closer"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/DRSN-tech/catalog-backend/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App собирает зависимости и управляет жизненным циклом серверов и outbox-воркера.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	closer  *closer.Closer
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	worker  *kafka.OutboxWorker
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	c := closer.NewCloser(0)
	a := &App{cfg: cfg, logger: log, closer: c}

	// === PostgreSQL ===
	db, err := initPGDB(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	c.AddFunc("postgres", db.Close)

	productConv := pgdbConv.NewProductConverter()
	categoryConv := pgdbConv.NewCategoryConverter()

	productRepo := pgdb.NewProductRepo(db.Pool, productConv, categoryConv)
	categoryRepo := pgdb.NewCategoryRepo(db.Pool, categoryConv, productConv)
	orderRepo := pgdb.NewOrderRepo(db.Pool, pgdbConv.NewOrderConverter())
	salesRepo := pgdb.NewSalesRepo(db.Pool)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverter())

	txManager := postgres.NewTxManager(db.Pool, cfg.Orders.TxMaxRetries, log)

	// === Redis ===
	redisClient := clients.NewRedisClient(cfg.Redis)
	if err := redisClient.Ping(ctx); err != nil {
		_ = c.Close(ctx)
		log.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	c.Add("redis", func(context.Context) error { return redisClient.Close() })

	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.NewReportConverter(), cfg.Redis, log)

	// === MinIO ===
	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		_ = c.Close(ctx)
		log.Errorf(err, "failed to initialize minio client")
		return nil, err
	}
	if err := clients.EnsureBucket(ctx, minioClient, cfg.Minio.ReportBucket); err != nil {
		_ = c.Close(ctx)
		log.Errorf(err, "failed to initialize MinIO bucket")
		return nil, err
	}

	reportRepo := s3Repo.NewReportRepo(minioClient, cfg.Minio, log)

	// === Kafka ===
	producer := kafka.NewProducer(log, cfg.Kafka)
	if err := producer.EnsureTopic(5 * time.Second); err != nil {
		// Топик может появиться позже: воркер повторит отправку по таймеру
		log.Warnf("failed to ensure kafka topic %s: %v", cfg.Kafka.Topic, err)
	}
	c.Add("kafka producer", func(context.Context) error { return producer.Close() })

	a.worker = kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)
	c.AddFunc("outbox worker", a.worker.Stop)

	// === Use cases ===
	orderUC := usecase.NewOrderUC(
		orderRepo,
		productRepo,
		outboxRepo,
		cacheRepo,
		txManager,
		log,
		usecase.ParseStockPolicy(cfg.Orders.StockPolicy),
	)
	productUC := usecase.NewProductUC(productRepo, categoryRepo, cacheRepo, txManager, log)
	categoryUC := usecase.NewCategoryUC(categoryRepo, productRepo, txManager, log)
	reportUC := usecase.NewReportUC(salesRepo, productRepo, cacheRepo, reportRepo, log)

	// === gRPC ===
	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	a.grpcSrv.RegisterServices(reportUC, cfg.Reports.DefaultTopN)
	c.Add("gRPC server", a.grpcSrv.Stop)

	// === HTTP ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := chi.NewRouter()
	v1Http.NewRouter(r, log, registry).Init(v1Http.UseCases{
		Orders:      orderUC,
		Products:    productUC,
		Categories:  categoryUC,
		Reports:     reportUC,
		DefaultTopN: cfg.Reports.DefaultTopN,
	})

	a.httpSrv = v1Http.NewServer(r, cfg.Http, log)
	c.Add("HTTP server", a.httpSrv.Stop)

	return a, nil
}

// Run блокируется до сигнала остановки или падения одного из компонентов.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(a.httpSrv.Run)
	g.Go(a.grpcSrv.Start)
	g.Go(func() error {
		return a.worker.Run(gCtx)
	})

	<-gCtx.Done()
	if ctx.Err() != nil {
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
	}

	if err := g.Wait(); err != nil {
		a.logger.Errorf(err, "application stopped with error")
		return err
	}

	a.logger.Infof("Application shutdown complete")
	return nil
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
