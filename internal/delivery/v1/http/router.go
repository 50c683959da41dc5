package http

import (
	"net/http"

	_ "github.com/DRSN-tech/catalog-backend/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// UseCases — набор сценариев, которые обслуживает REST API.
type UseCases struct {
	Orders      usecase.OrderUC
	Products    usecase.ProductUC
	Categories  usecase.CategoryUC
	Reports     usecase.ReportUC
	DefaultTopN int
}

type Router struct {
	router   *chi.Mux
	logger   logger.Logger
	registry *prometheus.Registry
}

func NewRouter(router *chi.Mux, logger logger.Logger, registry *prometheus.Registry) *Router {
	return &Router{router: router, logger: logger, registry: registry}
}

func (r *Router) Init(uc UseCases) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(middleware.Recoverer)
	r.router.Use(NewServerMetrics(r.registry).Middleware)

	r.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.router.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerOrderRoutes(v1, NewOrderHandler(uc.Orders, r.logger))
		registerProductRoutes(v1, NewProductHandler(uc.Products, r.logger))
		registerCategoryRoutes(v1, NewCategoryHandler(uc.Categories, r.logger))
		registerReportRoutes(v1, NewReportHandler(uc.Reports, uc.DefaultTopN, r.logger))
	})
}

func registerOrderRoutes(router chi.Router, h *OrderHandler) {
	router.Route("/orders", func(or chi.Router) {
		or.Post("/", h.placeOrder)
		or.Get("/", h.listOrders)
		or.Get("/last-month", h.ordersInLastMonth)
		or.Get("/{id}", h.getOrder)
		or.Put("/{id}", h.updateOrder)
		or.Delete("/{id}", h.deleteOrder)
	})
}

func registerProductRoutes(router chi.Router, h *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Post("/", h.createProduct)
		pr.Get("/", h.listProducts)
		pr.Get("/category/{categoryId}", h.productsByCategory)
		pr.Get("/{id}", h.getProduct)
		pr.Put("/{id}", h.updateProduct)
		pr.Delete("/{id}", h.deleteProduct)
	})
}

func registerCategoryRoutes(router chi.Router, h *CategoryHandler) {
	router.Route("/categories", func(cr chi.Router) {
		cr.Post("/", h.createCategory)
		cr.Get("/", h.listCategories)
		cr.Get("/{id}", h.getCategory)
		cr.Put("/{id}", h.updateCategory)
		cr.Delete("/{id}", h.deleteCategory)
	})
}

func registerReportRoutes(router chi.Router, h *ReportHandler) {
	router.Route("/reports/sales", func(rr chi.Router) {
		rr.Get("/total", h.totalSales)
		rr.Get("/top", h.topProducts)
		rr.Post("/export", h.exportReport)
	})
}
