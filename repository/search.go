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
	"fmt"
	"reflect"
	"strings"

	"github.com/tomoncle/crudkit/types"
)

var (
	stringType    = reflect.TypeOf("")
	stringPtrType = reflect.TypeOf((*string)(nil))
)

// SearchPath is a validated dotted path from an entity to a string field,
// e.g. "Author.Profile.Nickname". Every step but the last is a has-one or
// belongs-to relation.
type SearchPath struct {
	path      string
	relations []string
	field     *Field
}

// NewSearchPath validates dotted against the mapping of T.
func NewSearchPath[T any](dotted string) (*SearchPath, error) {
	m, err := MetadataOf[T]()
	if err != nil {
		return nil, err
	}
	return m.SearchPath(dotted)
}

// SearchPath validates dotted against m.
func (m *Metadata) SearchPath(dotted string) (*SearchPath, error) {
	steps := strings.Split(dotted, ".")
	for _, s := range steps {
		if s == "" {
			return nil, fmt.Errorf("%w: malformed search path %q", ErrUnknownField, dotted)
		}
	}
	cur := m
	relations := make([]string, 0, len(steps)-1)
	for _, step := range steps[:len(steps)-1] {
		f, next, err := cur.Related(step)
		if err != nil {
			return nil, err
		}
		if !f.Joinable() {
			return nil, fmt.Errorf("%w: %s.%s is a %s relation", ErrUnknownField, cur.Type, f.GoName, f.Relation)
		}
		relations = append(relations, f.GoName)
		cur = next
	}
	leaf, err := cur.Field(steps[len(steps)-1])
	if err != nil {
		return nil, err
	}
	if leaf.IsRelation() || (leaf.Type != stringType && leaf.Type != stringPtrType) {
		return nil, fmt.Errorf("%w: %s.%s is not a string column", ErrUnknownField, cur.Type, leaf.GoName)
	}
	return &SearchPath{path: dotted, relations: relations, field: leaf}, nil
}

func (p *SearchPath) String() string { return p.path }

// Relation returns the bun relation path joined by the search, or "".
func (p *SearchPath) Relation() string { return strings.Join(p.relations, ".") }

// Condition nests leaf under every relation step of the path.
func (p *SearchPath) Condition(leaf types.Condition) types.Condition {
	cond := leaf
	for i := len(p.relations) - 1; i >= 0; i-- {
		cond = types.Nested(p.relations[i], cond)
	}
	return cond
}

// Contains matches term anywhere in the field, ignoring case. term is used
// as-is, so % and _ keep their LIKE meaning.
func (p *SearchPath) Contains(term string) types.Condition {
	return p.Condition(types.ILike(p.field.GoName, "%"+term+"%"))
}
