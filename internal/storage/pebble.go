// Package storage хранит корзины устройств в локальной базе Pebble.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/mmeshcher/vinayak-store/internal/cart"
	"github.com/mmeshcher/vinayak-store/internal/model"
)

const cartKeyPrefix = "cart/"

// PebbleCarts хранит сохранённые корзины, по одному ключу на устройство.
type PebbleCarts struct {
	db *pebble.DB
}

// OpenPebbleCarts открывает (или создаёт) базу в каталоге dir.
func OpenPebbleCarts(dir string) (*PebbleCarts, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleCarts{db: db}, nil
}

// Close закрывает базу.
func (p *PebbleCarts) Close() error { return p.db.Close() }

// ForDevice возвращает хранилище корзины устройства.
func (p *PebbleCarts) ForDevice(deviceID string) cart.Persister {
	return &DeviceCart{db: p.db, key: []byte(cartKeyPrefix + deviceID)}
}

// DeviceCart сохраняет корзину одного устройства под фиксированным ключом.
type DeviceCart struct {
	db  *pebble.DB
	key []byte
}

// LoadCart возвращает сохранённые строки или пустую корзину, если сохранения нет.
func (d *DeviceCart) LoadCart() ([]model.CartLine, error) {
	v, closer, err := d.db.Get(d.key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()

	var lines []model.CartLine
	if err := json.Unmarshal(v, &lines); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return lines, nil
}

// SaveCart перезаписывает сохранённую корзину. Пустая корзина сохраняется как пустой список.
func (d *DeviceCart) SaveCart(lines []model.CartLine) error {
	if lines == nil {
		lines = []model.CartLine{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := d.db.Set(d.key, b, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}
