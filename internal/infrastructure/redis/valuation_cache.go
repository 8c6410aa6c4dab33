package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/alcafoods/magazzino-api/internal/application/ports"
	"github.com/alcafoods/magazzino-api/pkg/config"
)

var _ ports.ValuationCache = (*ValuationCache)(nil)

// nullPrice marca en cache un artículo sin carichi con precio (costo medio nil).
const nullPrice = "null"

// cacheTTL housekeeping: la invalidación real la hace la versión en la clave
// (id del último movimiento); el TTL solo limpia claves de versiones viejas.
const cacheTTL = 12 * time.Hour

// ValuationCache memoriza el costo medio por artículo en Redis, versionado por
// el id del último movimiento: cualquier movimiento nuevo cambia la clave y el
// valor viejo deja de consultarse.
type ValuationCache struct {
	client *redis.Client
}

// New conecta el cache de valoración. El caller decide no construirlo si
// REDIS_ADDR está vacío (cache deshabilitado).
func New(ctx context.Context, cfg config.RedisConfig) (*ValuationCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &ValuationCache{client: client}, nil
}

func cacheKey(article, version string) string {
	return fmt.Sprintf("avgcost:%s:%s", article, version)
}

// Get devuelve (precio, true) en hit. El precio puede ser nil: un artículo sin
// carichi con precio también se cachea (sentinela "null").
func (c *ValuationCache) Get(ctx context.Context, article, version string) (*decimal.Decimal, bool) {
	val, err := c.client.Get(ctx, cacheKey(article, version)).Result()
	if err != nil {
		// redis.Nil = miss; cualquier otro error también se trata como miss,
		// el costo se recalcula del ledger
		return nil, false
	}
	if val == nullPrice {
		return nil, true
	}
	price, err := decimal.NewFromString(val)
	if err != nil {
		return nil, false
	}
	return &price, true
}

// Set guarda el costo medio calculado. Errores se ignoran: el cache es best-effort.
func (c *ValuationCache) Set(ctx context.Context, article, version string, price *decimal.Decimal) {
	val := nullPrice
	if price != nil {
		val = price.String()
	}
	_ = c.client.Set(ctx, cacheKey(article, version), val, cacheTTL).Err()
}

// Close cierra la conexión.
func (c *ValuationCache) Close() error {
	return c.client.Close()
}
