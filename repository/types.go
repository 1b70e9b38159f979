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

	"github.com/uptrace/bun"

	"github.com/tomoncle/crudkit/types"
)

// Finder groups the read operations of a Store.
type Finder[T any] interface {
	Find(ctx context.Context, opts *types.FindOptions) ([]*T, error)

	// FindAndCount returns one window of rows together with the number of
	// rows matching opts without Offset and Limit.
	FindAndCount(ctx context.Context, opts *types.FindOptions) ([]*T, int, error)

	// FindOne returns the first matching row, or nil and no error.
	FindOne(ctx context.Context, opts *types.FindOptions) (*T, error)

	Exists(ctx context.Context, opts *types.FindOptions) (bool, error)

	Count(ctx context.Context, opts *types.FindOptions) (int, error)
}

// Writer groups the mutating operations of a Store.
type Writer[T any] interface {
	// Save inserts entities whose primary key is zero and upserts the rest.
	// Entities are updated in place with values returned by the database.
	Save(ctx context.Context, entities ...*T) ([]*T, error)

	// SoftRemove marks entities deleted through their soft_delete field.
	SoftRemove(ctx context.Context, entities ...*T) ([]*T, error)

	// Remove deletes the rows of entities, soft-deleted or not.
	Remove(ctx context.Context, entities ...*T) ([]*T, error)
}

// Store is the persistence handle used by the service layer.
type Store[T any] interface {
	Finder[T]
	Writer[T]

	// WithTx returns a Store that runs every query on tx.
	WithTx(tx *bun.Tx) Store[T]

	// RunInTx runs fn on the bound transaction, or on a new one that is
	// committed when fn returns nil.
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store[T]) error) error

	Metadata() *Metadata

	// DB returns the *bun.DB or *bun.Tx queries run on.
	DB() bun.IDB
}
