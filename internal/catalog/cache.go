// Package catalog кеширует чтения каталога поверх хранилища.
package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mmeshcher/vinayak-store/internal/model"
)

// Source описывает хранилище каталога.
type Source interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, category string) ([]model.Product, error)
	GetService(ctx context.Context, id string) (*model.Service, error)
	ListServices(ctx context.Context) ([]model.Service, error)
	GetPackage(ctx context.Context, id string) (*model.Package, error)
	ListPackages(ctx context.Context) ([]model.Package, error)
}

type entry struct {
	value   any
	expires time.Time
}

// Cache читает каталог через Source и хранит ответы ttl.
// Одновременные промахи по одному ключу приводят к одному запросу в Source.
// Ошибки не кешируются.
type Cache struct {
	src   Source
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
}

// NewCache создаёт кеш. При ttl <= 0 каждый вызов идёт в Source.
func NewCache(src Source, ttl time.Duration) *Cache {
	return &Cache{
		src:     src,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Invalidate сбрасывает все закешированные ответы.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) load(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// другой вызов мог заполнить запись, пока мы ждали
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[key] = entry{value: v, expires: c.now().Add(c.ttl)}
			c.mu.Unlock()
		}
		return v, nil
	})
	return v, err
}

// GetProduct возвращает товар по идентификатору.
func (c *Cache) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	v, err := c.load(ctx, "product/"+id, func(ctx context.Context) (any, error) {
		return c.src.GetProduct(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*model.Product)
	return &p, nil
}

// ListProducts возвращает товары категории или все товары при пустой категории.
func (c *Cache) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	v, err := c.load(ctx, "products/"+category, func(ctx context.Context) (any, error) {
		return c.src.ListProducts(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return append([]model.Product(nil), v.([]model.Product)...), nil
}

// GetService возвращает услугу по идентификатору.
func (c *Cache) GetService(ctx context.Context, id string) (*model.Service, error) {
	v, err := c.load(ctx, "service/"+id, func(ctx context.Context) (any, error) {
		return c.src.GetService(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	s := *v.(*model.Service)
	s.Items = append([]model.OptionalItem(nil), s.Items...)
	return &s, nil
}

// ListServices возвращает все услуги.
func (c *Cache) ListServices(ctx context.Context) ([]model.Service, error) {
	v, err := c.load(ctx, "services", func(ctx context.Context) (any, error) {
		return c.src.ListServices(ctx)
	})
	if err != nil {
		return nil, err
	}
	cached := v.([]model.Service)
	out := make([]model.Service, len(cached))
	for i, sv := range cached {
		sv.Items = append([]model.OptionalItem(nil), sv.Items...)
		out[i] = sv
	}
	return out, nil
}

// GetPackage возвращает набор по идентификатору.
func (c *Cache) GetPackage(ctx context.Context, id string) (*model.Package, error) {
	v, err := c.load(ctx, "package/"+id, func(ctx context.Context) (any, error) {
		return c.src.GetPackage(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*model.Package)
	p.Items = append([]model.OptionalItem(nil), p.Items...)
	return &p, nil
}

// ListPackages возвращает все наборы.
func (c *Cache) ListPackages(ctx context.Context) ([]model.Package, error) {
	v, err := c.load(ctx, "packages", func(ctx context.Context) (any, error) {
		return c.src.ListPackages(ctx)
	})
	if err != nil {
		return nil, err
	}
	cached := v.([]model.Package)
	out := make([]model.Package, len(cached))
	for i, p := range cached {
		p.Items = append([]model.OptionalItem(nil), p.Items...)
		out[i] = p
	}
	return out, nil
}
