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
	clone "github.com/huandu/go-clone"
)

type cloner[T any] interface {
	Clone() *T
}

func (s *baseServiceImpl[T, PK]) Clone(entity *T) (*T, error) {
	if entity == nil {
		return nil, nil
	}
	if fn, ok := s.options.cloner.(func(*T) (*T, error)); ok {
		return fn(entity)
	}
	if c, ok := any(entity).(cloner[T]); ok {
		return c.Clone(), nil
	}
	// Slowly tolerates the pointer cycles relations can form.
	return clone.Slowly(entity).(*T), nil
}
