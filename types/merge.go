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

package types

// MergeInto applies changes to target in place and returns target.
type MergeInto[T any] interface {
	Merge(target *T) *T
}

// MergeFunc adapts a function to MergeInto.
type MergeFunc[T any] func(target *T) *T

func (f MergeFunc[T]) Merge(target *T) *T { return f(target) }

// UpdateResult holds the snapshot loaded before an update and the saved
// result. Before is never modified by the update.
type UpdateResult[T any] struct {
	Before *T `json:"before"`
	After  *T `json:"after"`
}

// UpdateManyResult is UpdateResult for a batch. Before[i] and After[i]
// describe the same entity.
type UpdateManyResult[T any] struct {
	Before []*T `json:"before"`
	After  []*T `json:"after"`
}
