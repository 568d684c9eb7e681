// Package product serves product reads from the local store and refreshes
// records from the external product API once they are older than the TTL.
package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"favorites-catalog/internal/domain"
	"favorites-catalog/internal/metrics"
	"favorites-catalog/internal/productsapi"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// Store is the local product persistence.
type Store interface {
	FindByExternalID(ctx context.Context, externalID int64) (*domain.Product, error)
	Save(ctx context.Context, p domain.Product) (*domain.Product, error)
}

// Gateway fetches products from the external API. A nil product with a nil
// error means the API has no such product.
type Gateway interface {
	FetchByID(ctx context.Context, id int64) (*productsapi.ExternalProduct, error)
}

type Options struct {
	// TTL is how long a stored record is served without a refresh.
	TTL time.Duration
	// SingleFlight collapses concurrent refreshes of the same id into one
	// gateway call.
	SingleFlight bool
	// ServeStaleOnError returns the stored record when a refresh fails with
	// an external service error. Not-found is never masked.
	ServeStaleOnError bool
	Now               func() time.Time
	Logger            *log.Logger
}

type Service struct {
	store      Store
	gateway    Gateway
	ttl        time.Duration
	single     bool
	serveStale bool
	now        func() time.Time
	logger     *log.Logger
	tracer     trace.Tracer
	flight     singleflight.Group
}

func New(store Store, gateway Gateway, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		store:      store,
		gateway:    gateway,
		ttl:        opts.TTL,
		single:     opts.SingleFlight,
		serveStale: opts.ServeStaleOnError,
		now:        opts.Now,
		logger:     opts.Logger,
		tracer:     otel.Tracer("favorites-catalog/internal/service/product"),
	}
}

// GetByID returns the product whose external id is id. A stored record younger
// than the TTL is returned as is; otherwise the product is fetched, merged into
// the stored record and saved before being returned.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id is required")
	}

	ctx, span := s.tracer.Start(ctx, "ProductService.GetByID",
		trace.WithAttributes(attribute.Int64("product.external_id", id)),
	)
	defer span.End()

	p, err := s.getByID(ctx, span, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return p, nil
}

func (s *Service) getByID(ctx context.Context, span trace.Span, id int64) (*domain.Product, error) {
	stored, err := s.store.FindByExternalID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Printf("product service: find external_id=%d error=%v", id, err)
		return nil, fmt.Errorf("find product: %w", err)
	}
	if err != nil {
		stored = nil
	}

	switch {
	case stored == nil:
		s.lookup(span, "miss")
	case stored.FreshAt(s.now(), s.ttl):
		s.lookup(span, "hit")
		return stored, nil
	default:
		s.lookup(span, "stale")
	}

	if !s.single {
		return s.refresh(ctx, id, stored)
	}

	// The shared refresh outlives any single caller; a cancelled caller only
	// stops waiting for it.
	detached := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(strconv.FormatInt(id, 10), func() (interface{}, error) {
		return s.refresh(detached, id, stored)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		p := *res.Val.(*domain.Product)
		return &p, nil
	}
}

func (s *Service) refresh(ctx context.Context, id int64, stored *domain.Product) (*domain.Product, error) {
	ext, err := s.gateway.FetchByID(ctx, id)
	if err != nil {
		if s.serveStale && stored != nil && domain.IsExternalService(err) {
			metrics.ProductRefreshes.WithLabelValues("stale_served").Inc()
			s.logger.Printf("product service: refresh external_id=%d failed, serving stale error=%v", id, err)
			return stored, nil
		}
		metrics.ProductRefreshes.WithLabelValues("error").Inc()
		s.logger.Printf("product service: refresh external_id=%d error=%v", id, err)
		return nil, err
	}
	if ext == nil {
		metrics.ProductRefreshes.WithLabelValues("not_found").Inc()
		s.logger.Printf("product service: refresh external_id=%d not found", id)
		return nil, domain.NewNotFoundError("product not found")
	}

	if ext.ID != id {
		s.logger.Printf("product service: refresh external_id=%d payload id=%d ignored", id, ext.ID)
	}

	// The record stays keyed on the requested id whatever the payload echoes.
	merged := domain.Product{
		ExternalProductID: id,
		Title:             ext.Title,
		Description:       ext.Description,
		Image:             ext.Image,
		Price:             ext.Price,
		Rating:            ext.Rating,
		LastUpdateDate:    s.now(),
	}
	if stored != nil {
		merged.ID = stored.ID
	}

	saved, err := s.store.Save(ctx, merged)
	if err != nil {
		metrics.ProductRefreshes.WithLabelValues("error").Inc()
		s.logger.Printf("product service: save external_id=%d error=%v", id, err)
		return nil, fmt.Errorf("save product: %w", err)
	}
	metrics.ProductRefreshes.WithLabelValues("ok").Inc()
	s.logger.Printf("product service: refreshed external_id=%d id=%d", saved.ExternalProductID, saved.ID)
	return saved, nil
}

func (s *Service) lookup(span trace.Span, outcome string) {
	metrics.ProductCacheLookups.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("cache.outcome", outcome))
}
