package repository

import (
	"context"
	"errors"
	"fmt"

	"pycsa-web/internal/baas"
)

// SortOrder represents the sort direction
type SortOrder bool

const (
	Asc  SortOrder = true
	Desc SortOrder = false
)

type orderTerm struct {
	column string
	dir    SortOrder
}

// table holds the CRUD calls shared by every entity repository. F is the
// writable column set and T the stored row.
type table[F any, T any] struct {
	client   *baas.Client
	name     string
	order    []orderTerm
	notFound error
}

func (t *table[F, T]) query() *baas.Query {
	return t.client.From(t.name)
}

func (t *table[F, T]) ordered(q *baas.Query) *baas.Query {
	for _, o := range t.order {
		q = q.Order(o.column, bool(o.dir))
	}
	return q
}

func (t *table[F, T]) list(ctx context.Context) ([]T, error) {
	var rows []T
	if _, err := t.ordered(t.query().Select("*")).Find(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	return rows, nil
}

func (t *table[F, T]) findByID(ctx context.Context, id int64) (*T, error) {
	var row T
	_, err := t.query().Select("*").Eq("id", id).Single().Find(ctx, &row)
	if err != nil {
		return nil, t.translate("find", err)
	}
	return &row, nil
}

func (t *table[F, T]) create(ctx context.Context, fields F) (*T, error) {
	var row T
	if err := t.query().Select("*").Single().Insert(ctx, fields, &row); err != nil {
		return nil, fmt.Errorf("failed to create %s row: %w", t.name, err)
	}
	return &row, nil
}

func (t *table[F, T]) update(ctx context.Context, id int64, fields F) (*T, error) {
	var row T
	if err := t.query().Select("*").Eq("id", id).Single().Update(ctx, fields, &row); err != nil {
		return nil, t.translate("update", err)
	}
	return &row, nil
}

func (t *table[F, T]) delete(ctx context.Context, id int64) error {
	if err := t.query().Eq("id", id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s row %d: %w", t.name, id, err)
	}
	return nil
}

func (t *table[F, T]) translate(op string, err error) error {
	if errors.Is(err, baas.ErrNoRows) {
		return t.notFound
	}
	return fmt.Errorf("failed to %s %s row: %w", op, t.name, err)
}
