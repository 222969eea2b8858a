// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/shoprec/shoprec/internal/metrics"
	"github.com/shoprec/shoprec/internal/models"
	"github.com/shoprec/shoprec/internal/recommend"
)

// InsertProduct adds a product to the catalog. Returns ErrDuplicate if
// the ID is already taken.
func (s *Store) InsertProduct(ctx context.Context, p recommend.Product) error {
	start := time.Now()
	err := s.insertProduct(ctx, p)
	metrics.RecordDBQuery("insert", "products", time.Since(start), ignoreConflict(err))
	return err
}

func (s *Store) insertProduct(ctx context.Context, p recommend.Product) error {
	if p.ID <= 0 {
		return fmt.Errorf("product id must be positive: %w", ErrInvalidInput)
	}
	if p.Title == "" {
		return fmt.Errorf("product title is required: %w", ErrInvalidInput)
	}

	sizes, err := json.Marshal(p.Sizes)
	if err != nil {
		return fmt.Errorf("marshal sizes: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, p.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check product %d: %w", p.ID, err)
	}
	if exists {
		return fmt.Errorf("product %d: %w", p.ID, ErrDuplicate)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO products (id, title, category, price, color, material, sizes, brand)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Category, p.Price, p.Color, p.Material, string(sizes), p.Brand,
	); err != nil {
		return fmt.Errorf("insert product %d: %w", p.ID, err)
	}

	return tx.Commit()
}

// GetProduct fetches one product by ID. Returns ErrNotFound when absent.
func (s *Store) GetProduct(ctx context.Context, id int) (recommend.Product, error) {
	start := time.Now()
	p, err := s.getProduct(ctx, id)
	metrics.RecordDBQuery("select", "products", time.Since(start), ignoreNotFound(err))
	return p, err
}

func (s *Store) getProduct(ctx context.Context, id int) (recommend.Product, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, title, category, price, color, material, sizes, brand
		 FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return recommend.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// ListProducts returns catalog rows matching the filter, ordered by ID.
func (s *Store) ListProducts(ctx context.Context, f models.ProductFilter) ([]recommend.Product, error) {
	start := time.Now()
	out, err := s.listProducts(ctx, f)
	metrics.RecordDBQuery("select", "products", time.Since(start), err)
	return out, err
}

func (s *Store) listProducts(ctx context.Context, f models.ProductFilter) ([]recommend.Product, error) {
	var where []string
	var args []interface{}

	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Brand != "" {
		where = append(where, "brand = ?")
		args = append(args, f.Brand)
	}
	if f.Color != "" {
		where = append(where, "color = ?")
		args = append(args, f.Color)
	}
	if f.Material != "" {
		where = append(where, "material = ?")
		args = append(args, f.Material)
	}
	if f.MinPrice > 0 {
		where = append(where, "price >= ?")
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		where = append(where, "price <= ?")
		args = append(args, f.MaxPrice)
	}

	query := `SELECT id, title, category, price, color, material, sizes, brand FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, f.Offset)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []recommend.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FetchProducts returns the full catalog. Part of recommend.EventSource.
func (s *Store) FetchProducts(ctx context.Context) ([]recommend.Product, error) {
	return s.ListProducts(ctx, models.ProductFilter{})
}

// CountProducts returns the catalog size.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (recommend.Product, error) {
	var p recommend.Product
	var sizes string
	if err := row.Scan(&p.ID, &p.Title, &p.Category, &p.Price, &p.Color, &p.Material, &sizes, &p.Brand); err != nil {
		return recommend.Product{}, err
	}
	if sizes != "" && sizes != "[]" {
		if err := json.Unmarshal([]byte(sizes), &p.Sizes); err != nil {
			return recommend.Product{}, fmt.Errorf("unmarshal sizes: %w", err)
		}
	}
	return p, nil
}

// ignoreConflict filters expected duplicate errors out of DB error
// metrics so business rejections don't look like query failures.
func ignoreConflict(err error) error {
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrInvalidInput) {
		return nil
	}
	return err
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
