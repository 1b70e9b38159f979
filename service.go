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

package crudkit

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/uptrace/bun"

	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/optional"
	"github.com/tomoncle/crudkit/repository"
	"github.com/tomoncle/crudkit/types"
)

type Service[T any, PK types.PrimaryKey] interface {
	// FindMany returns every entity matching opts in store order.
	FindMany(ctx context.Context, opts *types.FindOptions) ([]*T, error)

	// FindWithPagination returns one page of entities. A non-empty search
	// term is matched against the search field in every condition set.
	FindWithPagination(ctx context.Context, req *types.PaginationRequest, opts *types.FindOptions) (*types.PaginationResponse[T], error)

	ExistsBy(ctx context.Context, opts types.WhereOptions) (bool, error)

	CountBy(ctx context.Context, opts types.WhereOptions) (int, error)

	// FindOne returns the selected entity, or an empty Optional on a miss.
	FindOne(ctx context.Context, sel types.Selector[PK]) (optional.Optional[*T], error)

	// FindOneOrFail returns the error built by onMissing on a miss. A nil
	// onMissing yields a NotFoundError.
	FindOneOrFail(ctx context.Context, sel types.Selector[PK], onMissing func() error) (*T, error)

	// Create persists entity. A store-generated key is cleared first.
	Create(ctx context.Context, entity *T) (*T, error)

	CreateMany(ctx context.Context, entities []*T) ([]*T, error)

	// Update applies merge to a deep copy of the selected entity and saves
	// the copy. Before is the entity as loaded.
	Update(ctx context.Context, sel types.Selector[PK], merge types.MergeInto[T]) (*types.UpdateResult[T], error)

	UpdateMany(ctx context.Context, opts types.WhereOptions, merge types.MergeInto[T]) (*types.UpdateManyResult[T], error)

	SoftDelete(ctx context.Context, sel types.Selector[PK]) (*T, error)

	SoftDeleteMany(ctx context.Context, opts types.WhereOptions) ([]*T, error)

	HardDelete(ctx context.Context, sel types.Selector[PK]) (*T, error)

	// HardDeleteMany removes matching rows, soft-deleted ones included.
	HardDeleteMany(ctx context.Context, opts types.WhereOptions) ([]*T, error)

	// WithTx returns a Service whose store calls all run on tx.
	WithTx(tx *bun.Tx) Service[T, PK]

	// RunInTx runs fn on the bound transaction, or opens one.
	RunInTx(ctx context.Context, fn func(ctx context.Context, svc Service[T, PK]) error) error

	// Clone returns a deep copy of entity.
	Clone(entity *T) (*T, error)

	Store() repository.Store[T]
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	searchField  string
	generatedKey *bool
	cloner       interface{}
	logger       database.Logger
}

// WithSearchField names the dotted string field matched by pagination
// search terms, e.g. "Author.Profile.Nickname".
func WithSearchField(path string) Option {
	return func(o *serviceOptions) { o.searchField = path }
}

// WithGeneratedKey overrides whether the store generates primary keys. By
// default a key tagged autoincrement, identity or default: is generated.
func WithGeneratedKey(generated bool) Option {
	return func(o *serviceOptions) { o.generatedKey = &generated }
}

// WithCloner replaces the deep copy taken before a merge.
func WithCloner[T any](fn func(*T) (*T, error)) Option {
	return func(o *serviceOptions) { o.cloner = fn }
}

func WithLogger(l database.Logger) Option {
	return func(o *serviceOptions) { o.logger = l }
}

type baseServiceImpl[T any, PK types.PrimaryKey] struct {
	options      serviceOptions
	primaryField string
	connect      func() (repository.Store[T], error)

	once      sync.Once
	err       error
	store     repository.Store[T]
	pk        *repository.Field
	search    *repository.SearchPath
	generated bool
}

// NewService returns a Service over store. primaryField names the primary
// key by Go field or column name; its Go type must be PK.
func NewService[T any, PK types.PrimaryKey](store repository.Store[T], primaryField string, opts ...Option) (Service[T, PK], error) {
	s := newBaseServiceImpl[T, PK](primaryField, opts)
	s.store = store
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewDefaultService returns a Service backed by the global database
// connection. Misconfiguration is reported by the first call.
func NewDefaultService[T any, PK types.PrimaryKey](primaryField string, opts ...Option) Service[T, PK] {
	s := newBaseServiceImpl[T, PK](primaryField, opts)
	s.connect = func() (repository.Store[T], error) {
		return repository.NewRepository[T](database.GetDB())
	}
	return s
}

func newBaseServiceImpl[T any, PK types.PrimaryKey](primaryField string, opts []Option) *baseServiceImpl[T, PK] {
	s := &baseServiceImpl[T, PK]{primaryField: primaryField}
	for _, opt := range opts {
		opt(&s.options)
	}
	if s.options.logger == nil {
		s.options.logger = database.GetLogger()
	}
	return s
}

func (s *baseServiceImpl[T, PK]) ready() error {
	s.once.Do(func() { s.err = s.configure() })
	return s.err
}

func (s *baseServiceImpl[T, PK]) configure() error {
	if s.store == nil && s.connect != nil {
		store, err := s.connect()
		if err != nil {
			return misconfigured(err)
		}
		s.store = store
	}
	if s.store == nil {
		return misconfigured(errors.New("nil store"))
	}
	if s.options.cloner != nil {
		if _, ok := s.options.cloner.(func(*T) (*T, error)); !ok {
			return misconfigured(fmt.Errorf("cloner %T does not clone %s", s.options.cloner, s.entityName()))
		}
	}

	meta := s.store.Metadata()
	pk, err := meta.PrimaryKey(s.primaryField, reflect.TypeOf((*PK)(nil)).Elem())
	if err != nil {
		return misconfigured(err)
	}
	s.pk = pk
	s.generated = pk.Generated
	if s.options.generatedKey != nil {
		s.generated = *s.options.generatedKey
	}
	if s.options.searchField != "" {
		search, err := meta.SearchPath(s.options.searchField)
		if err != nil {
			return misconfigured(err)
		}
		s.search = search
	}
	return nil
}

// scoped returns a configured copy of s running on store.
func (s *baseServiceImpl[T, PK]) scoped(store repository.Store[T]) *baseServiceImpl[T, PK] {
	c := &baseServiceImpl[T, PK]{
		options:      s.options,
		primaryField: s.primaryField,
		store:        store,
		pk:           s.pk,
		search:       s.search,
		generated:    s.generated,
	}
	c.once.Do(func() {})
	return c
}

func (s *baseServiceImpl[T, PK]) entityName() string {
	return reflect.TypeOf((*T)(nil)).Elem().Name()
}

func (s *baseServiceImpl[T, PK]) notFound(op string) error {
	return &NotFoundError{Entity: s.entityName(), Operation: op}
}

func (s *baseServiceImpl[T, PK]) selectorOptions(sel types.Selector[PK]) (*types.FindOptions, error) {
	if !sel.IsValid() {
		return nil, ErrInvalidSelector
	}
	return sel.FindOptions(s.pk.Column), nil
}

func (s *baseServiceImpl[T, PK]) Store() repository.Store[T] {
	if s.ready() != nil {
		return nil
	}
	return s.store
}

func (s *baseServiceImpl[T, PK]) WithTx(tx *bun.Tx) Service[T, PK] {
	if err := s.ready(); err != nil {
		c := &baseServiceImpl[T, PK]{options: s.options, primaryField: s.primaryField}
		c.once.Do(func() { c.err = err })
		return c
	}
	return s.scoped(s.store.WithTx(tx))
}

func (s *baseServiceImpl[T, PK]) RunInTx(ctx context.Context, fn func(ctx context.Context, svc Service[T, PK]) error) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.RunInTx(ctx, func(ctx context.Context, store repository.Store[T]) error {
		return fn(ctx, s.scoped(store))
	})
}

func (s *baseServiceImpl[T, PK]) FindMany(ctx context.Context, opts *types.FindOptions) ([]*T, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.Find(ctx, opts)
}

func (s *baseServiceImpl[T, PK]) FindWithPagination(ctx context.Context, req *types.PaginationRequest, opts *types.FindOptions) (*types.PaginationResponse[T], error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	bounds := req.Bounds()
	find := opts.Clone()
	if s.search != nil && bounds.Search != "" {
		find.Where = find.Where.And(s.search.Contains(bounds.Search))
	}
	find.Offset, find.Limit = bounds.Offset, bounds.Limit

	rows, total, err := s.store.FindAndCount(ctx, find)
	if err != nil {
		return nil, err
	}
	return types.NewPaginationResponse(req, rows, total), nil
}

func (s *baseServiceImpl[T, PK]) ExistsBy(ctx context.Context, opts types.WhereOptions) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	return s.store.Exists(ctx, opts.FindOptions())
}

func (s *baseServiceImpl[T, PK]) CountBy(ctx context.Context, opts types.WhereOptions) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.store.Count(ctx, opts.FindOptions())
}

func (s *baseServiceImpl[T, PK]) FindOne(ctx context.Context, sel types.Selector[PK]) (optional.Optional[*T], error) {
	if err := s.ready(); err != nil {
		return optional.Empty[*T](), err
	}
	opts, err := s.selectorOptions(sel)
	if err != nil {
		return optional.Empty[*T](), err
	}
	return optional.OfAsync[*T](ctx, func(ctx context.Context) (*T, error) {
		return s.store.FindOne(ctx, opts)
	})
}

func (s *baseServiceImpl[T, PK]) FindOneOrFail(ctx context.Context, sel types.Selector[PK], onMissing func() error) (*T, error) {
	found, err := s.FindOne(ctx, sel)
	if err != nil {
		return nil, err
	}
	if onMissing == nil {
		onMissing = func() error { return s.notFound("findOneOrFail") }
	}
	return found.OrElseThrowFunc(onMissing)
}

// load returns the selected entity or a NotFoundError.
func (s *baseServiceImpl[T, PK]) load(ctx context.Context, sel types.Selector[PK], op string) (*T, error) {
	opts, err := s.selectorOptions(sel)
	if err != nil {
		return nil, err
	}
	entity, err := s.store.FindOne(ctx, opts)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, s.notFound(op)
	}
	return entity, nil
}

func (s *baseServiceImpl[T, PK]) Create(ctx context.Context, entity *T) (*T, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, fmt.Errorf("%w: nil entity", repository.ErrInvalidModel)
	}
	saved, err := s.CreateMany(ctx, []*T{entity})
	if err != nil {
		return nil, err
	}
	return saved[0], nil
}

func (s *baseServiceImpl[T, PK]) CreateMany(ctx context.Context, entities []*T) ([]*T, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return entities, nil
	}
	if s.generated {
		for _, e := range entities {
			if e != nil {
				s.pk.Reset(e)
			}
		}
	}
	saved, err := s.store.Save(ctx, entities...)
	if err != nil {
		return nil, err
	}
	s.options.logger.Debug("create", "entity", s.entityName(), "rows", len(saved))
	return saved, nil
}

// mergeCopy merges into a deep copy of entity.
func (s *baseServiceImpl[T, PK]) mergeCopy(entity *T, merge types.MergeInto[T]) (*T, error) {
	target, err := s.Clone(entity)
	if err != nil {
		return nil, err
	}
	if merged := merge.Merge(target); merged != target {
		return nil, ErrMergeContract
	}
	return target, nil
}

func (s *baseServiceImpl[T, PK]) Update(ctx context.Context, sel types.Selector[PK], merge types.MergeInto[T]) (*types.UpdateResult[T], error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if merge == nil {
		return nil, fmt.Errorf("%w: nil merge", ErrMergeContract)
	}
	before, err := s.load(ctx, sel, "update")
	if err != nil {
		return nil, err
	}
	after, err := s.mergeCopy(before, merge)
	if err != nil {
		return nil, err
	}
	saved, err := s.store.Save(ctx, after)
	if err != nil {
		return nil, err
	}
	s.options.logger.Debug("update", "entity", s.entityName(), "pk", s.pk.Get(before))
	return &types.UpdateResult[T]{Before: before, After: saved[0]}, nil
}

func (s *baseServiceImpl[T, PK]) UpdateMany(ctx context.Context, opts types.WhereOptions, merge types.MergeInto[T]) (*types.UpdateManyResult[T], error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if merge == nil {
		return nil, fmt.Errorf("%w: nil merge", ErrMergeContract)
	}
	before, err := s.store.Find(ctx, opts.FindOptions())
	if err != nil {
		return nil, err
	}
	if len(before) == 0 {
		return &types.UpdateManyResult[T]{Before: []*T{}, After: []*T{}}, nil
	}
	after := make([]*T, len(before))
	for i, e := range before {
		if after[i], err = s.mergeCopy(e, merge); err != nil {
			return nil, err
		}
	}
	saved, err := s.store.Save(ctx, after...)
	if err != nil {
		return nil, err
	}
	s.options.logger.Debug("update many", "entity", s.entityName(), "rows", len(saved))
	return &types.UpdateManyResult[T]{Before: before, After: saved}, nil
}

func (s *baseServiceImpl[T, PK]) SoftDelete(ctx context.Context, sel types.Selector[PK]) (*T, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	entity, err := s.load(ctx, sel, "softDelete")
	if err != nil {
		return nil, err
	}
	if _, err := s.store.SoftRemove(ctx, entity); err != nil {
		return nil, err
	}
	s.options.logger.Debug("soft delete", "entity", s.entityName(), "pk", s.pk.Get(entity))
	return entity, nil
}

func (s *baseServiceImpl[T, PK]) SoftDeleteMany(ctx context.Context, opts types.WhereOptions) ([]*T, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	entities, err := s.store.Find(ctx, opts.FindOptions())
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return entities, nil
	}
	if _, err := s.store.SoftRemove(ctx, entities...); err != nil {
		return nil, err
	}
	s.options.logger.Debug("soft delete many", "entity", s.entityName(), "rows", len(entities))
	return entities, nil
}

func (s *baseServiceImpl[T, PK]) HardDelete(ctx context.Context, sel types.Selector[PK]) (*T, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	entity, err := s.load(ctx, sel, "hardDelete")
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Remove(ctx, entity); err != nil {
		return nil, err
	}
	s.options.logger.Debug("hard delete", "entity", s.entityName(), "pk", s.pk.Get(entity))
	return entity, nil
}

func (s *baseServiceImpl[T, PK]) HardDeleteMany(ctx context.Context, opts types.WhereOptions) ([]*T, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	find := opts.FindOptions()
	find.WithDeleted = true
	entities, err := s.store.Find(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return entities, nil
	}
	if _, err := s.store.Remove(ctx, entities...); err != nil {
		return nil, err
	}
	s.options.logger.Debug("hard delete many", "entity", s.entityName(), "rows", len(entities))
	return entities, nil
}
