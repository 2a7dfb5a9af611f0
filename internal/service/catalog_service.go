package service

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	catalogCacheKey = "catalog:v1"
	catalogCacheTTL = 60 * time.Second
)

// CatalogService serves the unauthenticated storefront read path: the full
// category tree plus live products, cached in Redis for a short TTL. A cache
// failure degrades to a direct database read, never to an error.
type CatalogService interface {
	Catalog(ctx context.Context) (*dto.CatalogResponse, error)
	Invalidate(ctx context.Context)
}

type catalogService struct {
	products   ProductService
	categories CategoryService
	rdb        *redis.Client
}

func NewCatalogService(products ProductService, categories CategoryService, rdb *redis.Client) CatalogService {
	return &catalogService{products: products, categories: categories, rdb: rdb}
}

func (s *catalogService) Catalog(ctx context.Context) (*dto.CatalogResponse, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, catalogCacheKey).Bytes()
		if err == nil {
			var cached dto.CatalogResponse
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			log.Warn().Err(err).Msg("catalog cache read failed")
		}
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx, dto.ProductFilter{Page: 1, Limit: 200})
	if err != nil {
		return nil, err
	}

	resp := &dto.CatalogResponse{
		Categories: categories,
		Products:   products.Data,
	}

	if s.rdb != nil {
		if buf, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, catalogCacheKey, buf, catalogCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("catalog cache write failed")
			}
		}
	}
	return resp, nil
}

// Invalidate drops the cached catalog after a product or category mutation.
func (s *catalogService) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, catalogCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
