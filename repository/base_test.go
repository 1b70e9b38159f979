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
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tomoncle/crudkit/internal/testutil"
	"github.com/tomoncle/crudkit/types"
)

func newStore[T any](t *testing.T, db *bun.DB) Store[T] {
	t.Helper()
	s, err := NewRepository[T](db)
	require.NoError(t, err)
	return s
}

// seedArticles stores two authors with profiles and five articles,
// three written by Ann.
func seedArticles(t *testing.T) (*bun.DB, Store[testutil.Article]) {
	t.Helper()
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.Models()...)

	profiles := newStore[testutil.Profile](t, db)
	annie, bob := &testutil.Profile{Nickname: "Annie"}, &testutil.Profile{Nickname: "bobby"}
	_, err := profiles.Save(ctx, annie, bob)
	require.NoError(t, err)
	require.NotZero(t, annie.ID)

	authors := newStore[testutil.Author](t, db)
	ann := &testutil.Author{Name: "Ann", ProfileID: annie.ID}
	ben := &testutil.Author{Name: "Ben", ProfileID: bob.ID}
	_, err = authors.Save(ctx, ann, ben)
	require.NoError(t, err)

	articles := newStore[testutil.Article](t, db)
	_, err = articles.Save(ctx,
		&testutil.Article{Title: "go generics", Status: 1, AuthorID: ann.ID},
		&testutil.Article{Title: "bun tips", Status: 1, AuthorID: ann.ID},
		&testutil.Article{Title: "sqlite notes", Status: 2, AuthorID: ann.ID},
		&testutil.Article{Title: "cobra", Status: 1, AuthorID: ben.ID},
		&testutil.Article{Title: "yaml", Status: 3, AuthorID: ben.ID},
	)
	require.NoError(t, err)
	return db, articles
}

func titles(rows []*testutil.Article) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Title
	}
	return out
}

func TestNewRepositoryErrors(t *testing.T) {
	_, err := NewRepository[testutil.Article](nil)
	assert.Error(t, err)

	db := testutil.SetupTestDB(t)
	_, err = NewRepository[noKey](db)
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestStoreFind(t *testing.T) {
	_, store := seedArticles(t)
	ctx := context.Background()

	rows, err := store.Find(ctx, &types.FindOptions{
		Where:  types.NewWhere(types.Eq("Status", 1)),
		Orders: []string{"id ASC"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"go generics", "bun tips", "cobra"}, titles(rows))

	rows, err = store.Find(ctx, &types.FindOptions{
		Where:  types.AnyOf(types.ConditionSet{types.Eq("status", 2)}, types.ConditionSet{types.Eq("status", 3)}),
		Orders: []string{"title DESC"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"yaml", "sqlite notes"}, titles(rows))

	rows, err = store.Find(ctx, &types.FindOptions{Where: types.NewWhere(types.Eq("Title", "missing"))})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	rows, err = store.Find(ctx, &types.FindOptions{Where: types.NewWhere(types.In("ID", []int64{}))})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = store.Find(ctx, &types.FindOptions{Where: types.NewWhere(types.NotIn("Status", []int{1}))})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = store.Find(ctx, &types.FindOptions{Where: types.NewWhere(types.Raw("?TableAlias.status > ?", 1))})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = store.Find(ctx, &types.FindOptions{Where: types.NewWhere(types.Eq("Nope", 1))})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = store.Find(ctx, &types.FindOptions{Orders: []string{"id SIDEWAYS"}})
	assert.Error(t, err)
}

func TestStoreNestedWhere(t *testing.T) {
	_, store := seedArticles(t)
	ctx := context.Background()

	path, err := NewSearchPath[testutil.Article]("Author.Profile.Nickname")
	require.NoError(t, err)

	rows, total, err := store.FindAndCount(ctx, &types.FindOptions{
		Where:  types.NewWhere(path.Contains("ANN")),
		Orders: []string{"id ASC"},
		Limit:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Author)
	require.NotNil(t, rows[0].Author.Profile)
	assert.Equal(t, "Annie", rows[0].Author.Profile.Nickname)

	rows, err = store.Find(ctx, &types.FindOptions{
		Where: types.NewWhere(
			types.Nested("Author", types.Eq("Name", "Ben")),
			types.Eq("Status", 3),
		),
		Relations: []string{"Author"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"yaml"}, titles(rows))
}

func TestStoreFindOneExistsCount(t *testing.T) {
	_, store := seedArticles(t)
	ctx := context.Background()

	one, err := store.FindOne(ctx, &types.FindOptions{Where: types.NewWhere(types.Eq("Title", "cobra"))})
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, 1, one.Status)

	none, err := store.FindOne(ctx, &types.FindOptions{Where: types.NewWhere(types.Eq("Title", "none"))})
	require.NoError(t, err)
	assert.Nil(t, none)

	ok, err := store.Exists(ctx, &types.FindOptions{Where: types.NewWhere(types.Eq("Status", 3))})
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := store.Count(ctx, &types.FindOptions{Where: types.NewWhere(types.Ge("Status", 2))})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestStoreSaveUpsert(t *testing.T) {
	_, store := seedArticles(t)
	ctx := context.Background()

	a, err := store.FindOne(ctx, &types.FindOptions{Where: types.NewWhere(types.Eq("Title", "yaml"))})
	require.NoError(t, err)
	a.Title = "yaml v3"
	_, err = store.Save(ctx, a)
	require.NoError(t, err)

	n, err := store.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	got, err := store.FindOne(ctx, &types.FindOptions{Where: types.NewWhere(types.Eq("ID", a.ID))})
	require.NoError(t, err)
	assert.Equal(t, "yaml v3", got.Title)

	_, err = store.Save(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestStoreStringKey(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.Models()...)
	ctx := context.Background()
	store := newStore[testutil.Tag](t, db)

	id := uuid.NewString()
	_, err := store.Save(ctx, &testutil.Tag{ID: id, Label: "go"})
	require.NoError(t, err)
	_, err = store.Save(ctx, &testutil.Tag{ID: id, Label: "golang", Uses: 2})
	require.NoError(t, err)

	rows, err := store.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "golang", rows[0].Label)
	assert.Equal(t, 2, rows[0].Uses)

	_, err = store.SoftRemove(ctx, rows...)
	assert.ErrorIs(t, err, ErrSoftDeleteUnsupported)

	_, err = store.Remove(ctx, rows...)
	require.NoError(t, err)
	ok, err := store.Exists(ctx, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreSoftAndHardRemove(t *testing.T) {
	_, store := seedArticles(t)
	ctx := context.Background()

	bens, err := store.Find(ctx, &types.FindOptions{
		Where: types.NewWhere(types.Nested("Author", types.Eq("Name", "Ben"))),
	})
	require.NoError(t, err)
	require.Len(t, bens, 2)

	_, err = store.SoftRemove(ctx, bens...)
	require.NoError(t, err)
	assert.False(t, bens[0].DeletedAt.IsZero())

	n, err := store.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := store.Find(ctx, &types.FindOptions{WithDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = store.Remove(ctx, bens...)
	require.NoError(t, err)
	all, err = store.Find(ctx, &types.FindOptions{WithDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	out, err := store.Remove(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStoreRunInTx(t *testing.T) {
	_, store := seedArticles(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.RunInTx(ctx, func(ctx context.Context, tx Store[testutil.Article]) error {
		_, err := tx.Save(ctx, &testutil.Article{Title: "rolled back"})
		require.NoError(t, err)
		n, err := tx.Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 6, n)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := store.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	err = store.RunInTx(ctx, func(ctx context.Context, tx Store[testutil.Article]) error {
		_, isTx := tx.DB().(*bun.Tx)
		assert.True(t, isTx)
		return tx.RunInTx(ctx, func(ctx context.Context, inner Store[testutil.Article]) error {
			assert.Equal(t, tx.DB(), inner.DB())
			_, err := inner.Save(ctx, &testutil.Article{Title: "committed"})
			return err
		})
	})
	require.NoError(t, err)
	n, err = store.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}
