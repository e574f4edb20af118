package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/vinayak-store/internal/model"
)

// GetProduct возвращает товар по идентификатору.
func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, category, price, description, image, in_stock FROM products WHERE id = $1`,
		id,
	)

	var p model.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Description, &p.Image, &p.InStock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ListProducts возвращает товары, при непустой категории только этой категории.
func (r *PostgresRepository) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, category, price, description, image, in_stock
		 FROM products
		 WHERE $1 = '' OR category = $1
		 ORDER BY created_at DESC`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var res []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Description, &p.Image, &p.InStock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res = append(res, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

const serviceColumns = `id, name, category, price, decoration_charge, description, image, items`

func scanService(row pgx.Row) (model.Service, error) {
	var (
		s     model.Service
		items []byte
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Price, &s.DecorationCharge, &s.Description, &s.Image, &items); err != nil {
		return model.Service{}, err
	}
	if err := decodeItems(items, &s.Items); err != nil {
		return model.Service{}, fmt.Errorf("service %s: %w", s.ID, err)
	}
	return s, nil
}

// GetService возвращает услугу по идентификатору.
func (r *PostgresRepository) GetService(ctx context.Context, id string) (*model.Service, error) {
	s, err := scanService(r.pool.QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: service %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &s, nil
}

// ListServices возвращает все услуги.
func (r *PostgresRepository) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select services: %w", err)
	}
	defer rows.Close()

	var res []model.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		res = append(res, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

const packageColumns = `id, name, base_price, total_worth, is_customizable, description, image, items`

func scanPackage(row pgx.Row) (model.Package, error) {
	var (
		p     model.Package
		items []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.BasePrice, &p.TotalWorth, &p.IsCustomizable, &p.Description, &p.Image, &items); err != nil {
		return model.Package{}, err
	}
	if err := decodeItems(items, &p.Items); err != nil {
		return model.Package{}, fmt.Errorf("package %s: %w", p.ID, err)
	}
	return p, nil
}

// GetPackage возвращает набор по идентификатору.
func (r *PostgresRepository) GetPackage(ctx context.Context, id string) (*model.Package, error) {
	p, err := scanPackage(r.pool.QueryRow(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: package %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get package: %w", err)
	}
	return &p, nil
}

// ListPackages возвращает все наборы.
func (r *PostgresRepository) ListPackages(ctx context.Context) ([]model.Package, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+packageColumns+` FROM packages ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select packages: %w", err)
	}
	defer rows.Close()

	var res []model.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		res = append(res, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

func decodeItems(raw []byte, dst *[]model.OptionalItem) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}
	return nil
}
