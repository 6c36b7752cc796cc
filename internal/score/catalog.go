package score

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/streamarena/pk-battle/internal/domain"
	"github.com/streamarena/pk-battle/internal/repository"
)

// Catalog resolves gift IDs to their coin values. The catalog changes rarely
// and is read on every gift send, so lookups go through an LRU cache.
type Catalog struct {
	repo  repository.Gift
	cache *lru.Cache[string, *domain.Gift]
}

// NewCatalog creates a cached gift catalog
func NewCatalog(repo repository.Gift, size int) (*Catalog, error) {
	if size <= 0 {
		size = DefaultCatalogCacheSize
	}
	cache, err := lru.New[string, *domain.Gift](size)
	if err != nil {
		return nil, err
	}
	return &Catalog{repo: repo, cache: cache}, nil
}

// GetGift returns the catalog entry for a gift ID
func (c *Catalog) GetGift(ctx context.Context, giftID string) (*domain.Gift, error) {
	if gift, ok := c.cache.Get(giftID); ok {
		return gift, nil
	}

	gift, err := c.repo.GetGift(ctx, giftID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(giftID, gift)
	return gift, nil
}
