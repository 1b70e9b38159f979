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

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// Condition is a single predicate. Field names a Go field or a bun column of
// the entity the condition applies to. For OpNested, Field names a relation
// and Nested holds the conditions applied to the related entity.
type Condition struct {
	Field  string
	Op     Operator
	Value  interface{}
	Nested []Condition
	Filter *QueryFilter
}

func Eq(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

func Ne(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpNe, Value: value}
}

func Gt(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpGt, Value: value}
}

func Ge(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpGe, Value: value}
}

func Lt(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpLt, Value: value}
}

func Le(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpLe, Value: value}
}

// In matches any of values. values must be a slice.
func In(field string, values interface{}) Condition {
	return Condition{Field: field, Op: OpIn, Value: values}
}

func NotIn(field string, values interface{}) Condition {
	return Condition{Field: field, Op: OpNotIn, Value: values}
}

func Like(field, pattern string) Condition {
	return Condition{Field: field, Op: OpLike, Value: pattern}
}

// ILike is a case-insensitive Like.
func ILike(field, pattern string) Condition {
	return Condition{Field: field, Op: OpILike, Value: pattern}
}

func IsNull(field string) Condition {
	return Condition{Field: field, Op: OpIsNull}
}

func NotNull(field string) Condition {
	return Condition{Field: field, Op: OpNotNull}
}

// Nested applies conds to the entity reached through relation.
func Nested(relation string, conds ...Condition) Condition {
	return Condition{Field: relation, Op: OpNested, Nested: conds}
}

// Raw embeds a bun query fragment, e.g. Raw("?TableAlias.age > ?", 18).
func Raw(schema string, args ...interface{}) Condition {
	return Condition{Op: OpRaw, Filter: NewQueryFilter(schema, args...)}
}

// ConditionSet is a conjunction of conditions.
type ConditionSet []Condition

// Where is a disjunction of condition sets. The zero value matches every row.
type Where struct {
	Sets []ConditionSet
}

// NewWhere returns a Where matching rows that satisfy every condition.
func NewWhere(conds ...Condition) Where {
	if len(conds) == 0 {
		return Where{}
	}
	return Where{Sets: []ConditionSet{conds}}
}

// AnyOf returns a Where matching rows that satisfy at least one set.
func AnyOf(sets ...ConditionSet) Where {
	return Where{Sets: sets}
}

func (w Where) IsEmpty() bool { return len(w.Sets) == 0 }

// Or returns a copy of w with set added as another alternative.
func (w Where) Or(conds ...Condition) Where {
	out := w.Clone()
	out.Sets = append(out.Sets, conds)
	return out
}

// And returns a copy of w with conds added to every set. An empty w becomes
// a single set holding conds.
func (w Where) And(conds ...Condition) Where {
	if len(conds) == 0 {
		return w.Clone()
	}
	if w.IsEmpty() {
		return NewWhere(conds...)
	}
	out := Where{Sets: make([]ConditionSet, len(w.Sets))}
	for i, set := range w.Sets {
		merged := make(ConditionSet, 0, len(set)+len(conds))
		merged = append(merged, set...)
		merged = append(merged, conds...)
		out.Sets[i] = merged
	}
	return out
}

func (w Where) Clone() Where {
	if w.Sets == nil {
		return Where{}
	}
	out := Where{Sets: make([]ConditionSet, len(w.Sets))}
	for i, set := range w.Sets {
		out.Sets[i] = append(ConditionSet(nil), set...)
	}
	return out
}

// FindOptions describes a read against the store.
type FindOptions struct {
	Where       Where
	Relations   []string
	Orders      []string // "id ASC", "name DESC"
	Offset      int
	Limit       int
	WithDeleted bool
}

func (o *FindOptions) Clone() *FindOptions {
	if o == nil {
		return &FindOptions{}
	}
	return &FindOptions{
		Where:       o.Where.Clone(),
		Relations:   append([]string(nil), o.Relations...),
		Orders:      append([]string(nil), o.Orders...),
		Offset:      o.Offset,
		Limit:       o.Limit,
		WithDeleted: o.WithDeleted,
	}
}

// WhereOptions is the match scope of the bulk operations.
type WhereOptions struct {
	Where     Where
	Relations []string
}

func (o WhereOptions) FindOptions() *FindOptions {
	return &FindOptions{
		Where:     o.Where.Clone(),
		Relations: append([]string(nil), o.Relations...),
	}
}

// PrimaryKey lists the Go types accepted as an entity primary key.
type PrimaryKey interface {
	~string | ~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type selectorKind int

const (
	selectByPrimaryKey selectorKind = iota + 1
	selectByWhere
	selectByOptions
)

// Selector identifies a single entity.
type Selector[PK PrimaryKey] struct {
	kind      selectorKind
	pk        PK
	where     Where
	relations []string
	options   *FindOptions
}

// ByPrimaryKey selects the entity whose primary key equals pk.
func ByPrimaryKey[PK PrimaryKey](pk PK, relations ...string) Selector[PK] {
	return Selector[PK]{kind: selectByPrimaryKey, pk: pk, relations: relations}
}

// ByWhere selects the first entity matching where.
func ByWhere[PK PrimaryKey](where Where, relations ...string) Selector[PK] {
	return Selector[PK]{kind: selectByWhere, where: where, relations: relations}
}

// ByOptions selects the first entity matching opts.
func ByOptions[PK PrimaryKey](opts FindOptions) Selector[PK] {
	return Selector[PK]{kind: selectByOptions, options: &opts}
}

func (s Selector[PK]) IsValid() bool { return s.kind != 0 }

// PrimaryKey reports the selected key when s was built by ByPrimaryKey.
func (s Selector[PK]) PrimaryKey() (PK, bool) {
	return s.pk, s.kind == selectByPrimaryKey
}

// FindOptions resolves s against the primary key field pkField.
func (s Selector[PK]) FindOptions(pkField string) *FindOptions {
	switch s.kind {
	case selectByPrimaryKey:
		return &FindOptions{
			Where:     NewWhere(Eq(pkField, s.pk)),
			Relations: append([]string(nil), s.relations...),
		}
	case selectByWhere:
		return &FindOptions{
			Where:     s.where.Clone(),
			Relations: append([]string(nil), s.relations...),
		}
	case selectByOptions:
		return s.options.Clone()
	}
	return &FindOptions{}
}
