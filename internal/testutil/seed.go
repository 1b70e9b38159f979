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

package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tomoncle/crudkit/types"
)

// Fixture is the data stored by SeedArticles.
type Fixture struct {
	Profiles []*Profile
	Authors  []*Author
	Articles []*Article
}

// SeedArticles stores authors Ann (nickname "Annie") and Ben (nickname
// "bobby") and five articles, three of them by Ann:
//
//	go generics  status 1  Ann
//	bun tips     status 1  Ann
//	sqlite notes status 2  Ann
//	cobra        status 1  Ben
//	yaml         status 3  Ben
func SeedArticles(t testing.TB, db *bun.DB) *Fixture {
	t.Helper()
	ctx := context.Background()
	f := &Fixture{}

	f.Profiles = []*Profile{{Nickname: "Annie"}, {Nickname: "bobby"}}
	_, err := db.NewInsert().Model(&f.Profiles).Returning("*").Exec(ctx)
	require.NoError(t, err)

	f.Authors = []*Author{
		{Name: "Ann", ProfileID: f.Profiles[0].ID},
		{Name: "Ben", ProfileID: f.Profiles[1].ID},
	}
	_, err = db.NewInsert().Model(&f.Authors).Returning("*").Exec(ctx)
	require.NoError(t, err)

	ann, ben := f.Authors[0].ID, f.Authors[1].ID
	f.Articles = []*Article{
		{Title: "go generics", Status: 1, AuthorID: ann, Meta: types.JsonObject{"views": 1}},
		{Title: "bun tips", Status: 1, AuthorID: ann, Meta: types.JsonObject{}},
		{Title: "sqlite notes", Status: 2, AuthorID: ann, Meta: types.JsonObject{}},
		{Title: "cobra", Status: 1, AuthorID: ben, Meta: types.JsonObject{}},
		{Title: "yaml", Status: 3, AuthorID: ben, Meta: types.JsonObject{}},
	}
	_, err = db.NewInsert().Model(&f.Articles).Returning("*").Exec(ctx)
	require.NoError(t, err)
	return f
}
