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
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/crudkit/types"
)

type Profile struct {
	bun.BaseModel `bun:"table:profiles"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Nickname string `bun:"nickname,notnull"`
}

type Author struct {
	bun.BaseModel `bun:"table:authors"`

	ID        int64    `bun:"id,pk,autoincrement"`
	Name      string   `bun:"name,notnull"`
	ProfileID int64    `bun:"profile_id"`
	Profile   *Profile `bun:"rel:belongs-to,join:profile_id=id"`
}

type Article struct {
	bun.BaseModel `bun:"table:articles"`

	ID        int64            `bun:"id,pk,autoincrement"`
	Title     string           `bun:"title,notnull"`
	Status    int              `bun:"status"`
	AuthorID  int64            `bun:"author_id"`
	Author    *Author          `bun:"rel:belongs-to,join:author_id=id"`
	Meta      types.JsonObject `bun:"meta,type:text"`
	DeletedAt time.Time        `bun:"deleted_at,soft_delete,nullzero"`
}

// Tag has a caller-assigned string key and no soft delete column.
type Tag struct {
	bun.BaseModel `bun:"table:tags"`

	ID    string `bun:"id,pk"`
	Label string `bun:"label,notnull"`
	Uses  int    `bun:"uses"`
}

// Models lists every fixture model in dependency order.
func Models() []interface{} {
	return []interface{}{(*Profile)(nil), (*Author)(nil), (*Article)(nil), (*Tag)(nil)}
}
