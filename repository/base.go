/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"

	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/types"
)

type baseRepositoryImpl[T any] struct {
	db   *bun.DB
	tx   *bun.Tx
	meta *Metadata
}

// NewRepository returns a Store for T backed by the provided Bun DB.
func NewRepository[T any](db *bun.DB) (Store[T], error) {
	if db == nil {
		return nil, errors.New("repository: nil bun.DB")
	}
	meta, err := MetadataOf[T]()
	if err != nil {
		return nil, err
	}
	return &baseRepositoryImpl[T]{db: db, meta: meta}, nil
}

func (r *baseRepositoryImpl[T]) Metadata() *Metadata { return r.meta }

func (r *baseRepositoryImpl[T]) DB() bun.IDB {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *baseRepositoryImpl[T]) WithTx(tx *bun.Tx) Store[T] {
	return &baseRepositoryImpl[T]{db: r.db, tx: tx, meta: r.meta}
}

func (r *baseRepositoryImpl[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, store Store[T]) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, r.WithTx(&tx))
	})
}

func (r *baseRepositoryImpl[T]) selectQuery(model interface{}, opts *types.FindOptions) (*bun.SelectQuery, error) {
	q := r.DB().NewSelect().Model(model)
	return newWhereCompiler(r.db.Dialect()).apply(q, r.meta, opts)
}

func (r *baseRepositoryImpl[T]) Find(ctx context.Context, opts *types.FindOptions) ([]*T, error) {
	entities := make([]*T, 0)
	q, err := r.selectQuery(&entities, opts)
	if err != nil {
		return nil, err
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	if entities == nil {
		entities = make([]*T, 0)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) FindAndCount(ctx context.Context, opts *types.FindOptions) ([]*T, int, error) {
	entities := make([]*T, 0)
	q, err := r.selectQuery(&entities, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	if entities == nil {
		entities = make([]*T, 0)
	}
	return entities, total, nil
}

func (r *baseRepositoryImpl[T]) FindOne(ctx context.Context, opts *types.FindOptions) (*T, error) {
	one := opts.Clone()
	one.Limit = 1
	entities, err := r.Find(ctx, one)
	if err != nil || len(entities) == 0 {
		return nil, err
	}
	return entities[0], nil
}

func (r *baseRepositoryImpl[T]) Exists(ctx context.Context, opts *types.FindOptions) (bool, error) {
	q, err := r.selectQuery((*T)(nil), opts)
	if err != nil {
		return false, err
	}
	return q.Exists(ctx)
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, opts *types.FindOptions) (int, error) {
	q, err := r.selectQuery((*T)(nil), opts)
	if err != nil {
		return 0, err
	}
	return q.Count(ctx)
}

func (r *baseRepositoryImpl[T]) Save(ctx context.Context, entity ...*T) ([]*T, error) {
	var fresh, existing []*T
	for _, e := range entity {
		if e == nil {
			return nil, fmt.Errorf("%w: nil entity", ErrInvalidModel)
		}
		if r.hasZeroPK(e) {
			fresh = append(fresh, e)
		} else {
			existing = append(existing, e)
		}
	}
	if err := r.insert(ctx, fresh); err != nil {
		return nil, err
	}
	if err := r.upsert(ctx, existing); err != nil {
		return nil, err
	}
	database.GetLogger().Debug("save", "model", r.meta.Type.Name(), "inserted", len(fresh), "upserted", len(existing))
	return entity, nil
}

func (r *baseRepositoryImpl[T]) SoftRemove(ctx context.Context, entity ...*T) ([]*T, error) {
	if r.meta.SoftDelete == nil {
		return nil, fmt.Errorf("%w: %s", ErrSoftDeleteUnsupported, r.meta.Type)
	}
	if len(entity) == 0 {
		return entity, nil
	}
	entities := valsToSlice(entity...)
	if _, err := r.DB().NewDelete().Model(&entities).WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	database.GetLogger().Debug("soft remove", "model", r.meta.Type.Name(), "rows", len(entities))
	return entity, nil
}

func (r *baseRepositoryImpl[T]) Remove(ctx context.Context, entity ...*T) ([]*T, error) {
	if len(entity) == 0 {
		return entity, nil
	}
	entities := valsToSlice(entity...)
	q := r.DB().NewDelete().Model(&entities).WherePK()
	if r.meta.SoftDelete != nil {
		q = q.WhereAllWithDeleted().ForceDelete()
	}
	if _, err := q.Exec(ctx); err != nil {
		return nil, err
	}
	database.GetLogger().Debug("remove", "model", r.meta.Type.Name(), "rows", len(entities))
	return entity, nil
}

func valsToSlice[T any](entity ...*T) []*T {
	entities := make([]*T, len(entity))
	copy(entities, entity)
	return entities
}

func (r *baseRepositoryImpl[T]) hasZeroPK(entity *T) bool {
	for _, pk := range r.meta.PKs {
		if !pk.IsZero(entity) {
			return false
		}
	}
	return true
}

func (r *baseRepositoryImpl[T]) insert(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	if r.db.HasFeature(feature.InsertReturning) {
		_, err := r.DB().NewInsert().Model(&entities).Returning("*").Exec(ctx)
		return err
	}
	// Without RETURNING generated keys come back through LastInsertId,
	// which only covers single-row inserts.
	for _, e := range entities {
		if _, err := r.DB().NewInsert().Model(e).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T]) upsert(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	var keys, fields []string
	for _, f := range r.meta.Columns() {
		if f.IsPK {
			keys = append(keys, f.Column)
		} else {
			fields = append(fields, f.Column)
		}
	}

	switch {
	case r.db.HasFeature(feature.InsertOnConflict):
		return r.upsertWithPostgresqlOrSQLite(ctx, keys, fields, entities)
	case r.db.HasFeature(feature.InsertOnDuplicateKey):
		return r.upsertWithMySQL(ctx, keys, fields, entities)
	default:
		return r.upsertFallback(ctx, entities)
	}
}

func (r *baseRepositoryImpl[T]) upsertWithMySQL(ctx context.Context, keys, fields []string, entities []*T) error {
	if len(fields) == 0 {
		fields = keys
	}
	q := r.DB().NewInsert().Model(&entities).On("DUPLICATE KEY UPDATE")
	for _, field := range fields {
		q = q.Set("? = VALUES(?)", bun.Ident(field), bun.Ident(field))
	}
	_, err := q.Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertWithPostgresqlOrSQLite(ctx context.Context, keys, fields []string, entities []*T) error {
	holders := make([]string, len(keys))
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		holders[i], args[i] = "?", bun.Ident(k)
	}
	conflict := "CONFLICT (" + strings.Join(holders, ", ") + ")"

	q := r.DB().NewInsert().Model(&entities)
	if len(fields) == 0 {
		q = q.On(conflict+" DO NOTHING", args...)
	} else {
		q = q.On(conflict+" DO UPDATE", args...)
		for _, field := range fields {
			q = q.Set("? = EXCLUDED.?", bun.Ident(field), bun.Ident(field))
		}
	}
	if r.db.HasFeature(feature.InsertReturning) {
		q = q.Returning("*")
	}
	_, err := q.Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertFallback(ctx context.Context, entities []*T) error {
	for _, entity := range entities {
		_, err := r.DB().NewInsert().Model(entity).Exec(ctx)
		if err != nil {
			_, updateErr := r.DB().NewUpdate().Model(entity).WherePK().Exec(ctx)
			if updateErr != nil {
				return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %v", err, updateErr)
			}
		}
	}
	return nil
}
