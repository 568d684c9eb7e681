package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"favorites-catalog/internal/domain"
	"favorites-catalog/internal/httpserver/openapi"
	"favorites-catalog/internal/metrics"
	customersvc "favorites-catalog/internal/service/customer"
	"github.com/gin-gonic/gin"
)

type CustomerService interface {
	Create(ctx context.Context, in customersvc.Input) (*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	Update(ctx context.Context, id int64, in customersvc.UpdateInput) (*domain.Customer, error)
	DeleteByID(ctx context.Context, id int64) error
	List(ctx context.Context, page, size int) (domain.Page[domain.Customer], error)
}

type FavoriteService interface {
	Create(ctx context.Context, customerID, productID int64) (*domain.FavoriteProduct, error)
	DeleteByID(ctx context.Context, customerID, favoriteID int64) error
	ListByCustomer(ctx context.Context, customerID int64, page, size int) (domain.Page[domain.FavoriteProduct], error)
}

type ProductService interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

// Deps are the services behind the routes.
type Deps struct {
	Customers CustomerService
	Favorites FavoriteService
	Products  ProductService
}

func (d Deps) validate() error {
	var missing []string
	if d.Customers == nil {
		missing = append(missing, "Customers")
	}
	if d.Favorites == nil {
		missing = append(missing, "Favorites")
	}
	if d.Products == nil {
		missing = append(missing, "Products")
	}
	if len(missing) > 0 {
		return fmt.Errorf("httpserver: missing deps %v", missing)
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db Pinger, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	metrics.Init()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		requestID(),
		gin.LoggerWithConfig(gin.LoggerConfig{Output: logger.Writer(), Formatter: accessLogFormat}),
		gin.Recovery(),
		corsMiddleware(opts.CORSAllowedOrigins),
		requestMetrics(),
	)

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/api-docs", apiDocs)
	router.GET("/api-docs/openapi.yaml", apiSpec)

	h := &handlers{deps: deps, logger: logger}
	api := router.Group("/", requireJSON())
	api.POST("/customers", h.createCustomer)
	api.GET("/customers", h.listCustomers)
	api.GET("/customers/:id", h.getCustomer)
	api.PUT("/customers/:id", h.updateCustomer)
	api.DELETE("/customers/:id", h.deleteCustomer)
	api.POST("/customers/:id/favorites", h.createFavorite)
	api.GET("/customers/:id/favorites", h.listFavorites)
	api.DELETE("/customers/:id/favorites/:favoriteId", h.deleteFavorite)
	api.GET("/products/:id", h.getProduct)

	return router, nil
}

func apiDocs(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(openapi.DocsHTML("/api-docs/openapi.yaml")))
}

func apiSpec(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", openapi.YAML)
}

func accessLogFormat(p gin.LogFormatterParams) string {
	return fmt.Sprintf("http: %s %s status=%d latency=%s request_id=%v client=%s%s\n",
		p.Method, p.Path, p.StatusCode, p.Latency.Round(time.Microsecond), p.Keys[requestIDKey], p.ClientIP, errSuffix(p.ErrorMessage))
}

func errSuffix(msg string) string {
	if msg == "" {
		return ""
	}
	return " error=" + msg
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}

var errInvalidBody = domain.NewValidationError("invalid request body")

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errInvalidBody
		}
		return domain.NewValidationError(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
