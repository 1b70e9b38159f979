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
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var (
	ErrInvalidModel          = errors.New("repository: invalid model")
	ErrUnknownField          = errors.New("repository: unknown field")
	ErrSoftDeleteUnsupported = errors.New("repository: model has no soft_delete field")
)

// RelationKind is the bun relation type of a field tagged with rel:.
type RelationKind string

const (
	HasOne    RelationKind = "has-one"
	BelongsTo RelationKind = "belongs-to"
	HasMany   RelationKind = "has-many"
)

// Field is one bun-mapped struct field.
type Field struct {
	GoName     string
	Column     string
	Index      []int
	Type       reflect.Type
	IsPK       bool
	Generated  bool
	SoftDelete bool
	Relation   RelationKind
}

// IsRelation reports whether the field is a relation instead of a column.
func (f *Field) IsRelation() bool { return f.Relation != "" }

// Joinable reports whether the relation can be joined into a single select.
func (f *Field) Joinable() bool { return f.Relation == HasOne || f.Relation == BelongsTo }

// Target returns the struct type a relation points to.
func (f *Field) Target() reflect.Type {
	t := f.Type
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	return t
}

// Metadata describes the mapping of a model struct.
type Metadata struct {
	Type       reflect.Type
	Table      string
	Alias      string
	Fields     []*Field
	PKs        []*Field
	SoftDelete *Field
	byName     map[string]*Field
}

var metadataCache sync.Map // reflect.Type -> *Metadata

// MetadataOf returns the mapping of T, which must be a struct.
func MetadataOf[T any]() (*Metadata, error) {
	return metadataFor(reflect.TypeOf((*T)(nil)).Elem())
}

func metadataFor(t reflect.Type) (*Metadata, error) {
	if v, ok := metadataCache.Load(t); ok {
		return v.(*Metadata), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidModel, t)
	}
	m := &Metadata{Type: t, byName: map[string]*Field{}}
	m.collect(t, nil)
	if len(m.PKs) == 0 {
		return nil, fmt.Errorf("%w: %s has no pk field", ErrInvalidModel, t)
	}
	v, _ := metadataCache.LoadOrStore(t, m)
	return v.(*Metadata), nil
}

func (m *Metadata) collect(t reflect.Type, index []int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		idx := append(append([]int(nil), index...), i)
		tag := f.Tag.Get("bun")
		if f.Type.Name() == "BaseModel" && strings.Contains(f.Type.PkgPath(), "uptrace/bun") {
			m.parseTable(tag)
			continue
		}
		if tag == "-" {
			continue
		}
		if f.Anonymous && tag == "" {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				m.collect(ft, idx)
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		if strings.Contains(tag, "m2m:") {
			continue
		}

		parts := strings.Split(tag, ",")
		field := &Field{GoName: f.Name, Column: underscore(f.Name), Index: idx, Type: f.Type}
		opts := parts
		if first := strings.TrimSpace(parts[0]); !strings.Contains(first, ":") {
			if first != "" {
				field.Column = first
			}
			opts = parts[1:]
		}
		for _, p := range opts {
			p = strings.TrimSpace(p)
			switch {
			case p == "pk":
				field.IsPK = true
			case p == "autoincrement" || p == "identity" || strings.HasPrefix(p, "default:"):
				field.Generated = true
			case p == "soft_delete":
				field.SoftDelete = true
			case strings.HasPrefix(p, "rel:"):
				field.Relation = RelationKind(strings.TrimPrefix(p, "rel:"))
			}
		}
		m.Fields = append(m.Fields, field)
		m.byName[field.GoName] = field
		if !field.IsRelation() {
			m.byName[field.Column] = field
		}
		if field.IsPK {
			m.PKs = append(m.PKs, field)
		}
		if field.SoftDelete {
			m.SoftDelete = field
		}
	}
}

func (m *Metadata) parseTable(tag string) {
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "table:"):
			m.Table = strings.TrimPrefix(part, "table:")
		case strings.HasPrefix(part, "alias:"):
			m.Alias = strings.TrimPrefix(part, "alias:")
		}
	}
}

// Field looks a field up by Go name or column name.
func (m *Metadata) Field(name string) (*Field, error) {
	if f, ok := m.byName[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, m.Type, name)
}

// PrimaryKey returns the pk field called name and checks its Go type.
func (m *Metadata) PrimaryKey(name string, want reflect.Type) (*Field, error) {
	f, err := m.Field(name)
	if err != nil {
		return nil, err
	}
	if !f.IsPK {
		return nil, fmt.Errorf("%w: %s.%s is not tagged pk", ErrUnknownField, m.Type, f.GoName)
	}
	if want != nil && f.Type != want {
		return nil, fmt.Errorf("%w: %s.%s is %s, not %s", ErrInvalidModel, m.Type, f.GoName, f.Type, want)
	}
	return f, nil
}

// Columns returns the non-relation fields.
func (m *Metadata) Columns() []*Field {
	cols := make([]*Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		if !f.IsRelation() {
			cols = append(cols, f)
		}
	}
	return cols
}

// Related returns the metadata of the entity a relation field points to.
func (m *Metadata) Related(name string) (*Field, *Metadata, error) {
	f, err := m.Field(name)
	if err != nil {
		return nil, nil, err
	}
	if !f.IsRelation() {
		return nil, nil, fmt.Errorf("%w: %s.%s is not a relation", ErrUnknownField, m.Type, f.GoName)
	}
	target, err := metadataFor(f.Target())
	if err != nil {
		return nil, nil, err
	}
	return f, target, nil
}

func (f *Field) value(entity reflect.Value) reflect.Value {
	return entity.Elem().FieldByIndex(f.Index)
}

// IsZero reports whether the field of entity, a non-nil *T, holds its zero value.
func (f *Field) IsZero(entity interface{}) bool {
	return f.value(reflect.ValueOf(entity)).IsZero()
}

// Reset sets the field of entity, a non-nil *T, to its zero value.
func (f *Field) Reset(entity interface{}) {
	v := f.value(reflect.ValueOf(entity))
	v.Set(reflect.Zero(v.Type()))
}

// Get returns the field of entity, a non-nil *T.
func (f *Field) Get(entity interface{}) interface{} {
	return f.value(reflect.ValueOf(entity)).Interface()
}

// underscore mirrors bun's column naming: AuthorID -> author_id.
func underscore(s string) string {
	b := make([]byte, 0, len(s)+5)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUpper(c) {
			if i > 0 && i+1 < len(s) && (isLower(s[i-1]) || isLower(s[i+1])) {
				b = append(b, '_', c+'a'-'A')
			} else {
				b = append(b, c+'a'-'A')
			}
		} else {
			b = append(b, c)
		}
	}
	return string(b)
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
