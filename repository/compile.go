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

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/crudkit/types"
)

type predicate struct {
	query string
	args  []interface{}
}

// whereCompiler turns types.Where into bun predicates and collects the
// relations that nested conditions join.
type whereCompiler struct {
	pg        bool
	relations []string
	seen      map[string]struct{}
}

func newWhereCompiler(d schema.Dialect) *whereCompiler {
	return &whereCompiler{pg: d.Name() == dialect.PG, seen: map[string]struct{}{}}
}

func (c *whereCompiler) addRelation(path string) {
	if _, ok := c.seen[path]; ok {
		return
	}
	c.seen[path] = struct{}{}
	c.relations = append(c.relations, path)
}

func (c *whereCompiler) apply(q *bun.SelectQuery, m *Metadata, opts *types.FindOptions) (*bun.SelectQuery, error) {
	if opts == nil {
		opts = &types.FindOptions{}
	}
	for _, r := range opts.Relations {
		c.addRelation(r)
	}

	sets := make([][]predicate, 0, len(opts.Where.Sets))
	matchAll := false
	for _, set := range opts.Where.Sets {
		preds, err := c.compileSet(m, "", "", set)
		if err != nil {
			return nil, err
		}
		if len(preds) == 0 {
			matchAll = true
		}
		sets = append(sets, preds)
	}
	if len(sets) > 0 && !matchAll {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, preds := range sets {
				q = q.WhereGroup(" OR ", func(q *bun.SelectQuery) *bun.SelectQuery {
					for _, p := range preds {
						q = q.Where(p.query, p.args...)
					}
					return q
				})
			}
			return q
		})
	}

	for _, r := range c.relations {
		q = q.Relation(r)
	}
	for _, o := range opts.Orders {
		var err error
		if q, err = c.order(q, m, o); err != nil {
			return nil, err
		}
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.WithDeleted && m.SoftDelete != nil {
		q = q.WhereAllWithDeleted()
	}
	return q, nil
}

// order qualifies a bare column of the queried model with its alias so it
// stays unambiguous once relations are joined. Dotted names pass through.
func (c *whereCompiler) order(q *bun.SelectQuery, m *Metadata, order string) (*bun.SelectQuery, error) {
	parts := strings.Fields(order)
	if len(parts) == 0 {
		return q, nil
	}
	if strings.Contains(parts[0], ".") {
		return q.Order(order), nil
	}
	f, err := m.Field(parts[0])
	if err != nil {
		return nil, err
	}
	dir := strings.ToUpper(strings.Join(parts[1:], " "))
	switch dir {
	case "", "ASC", "DESC", "ASC NULLS FIRST", "ASC NULLS LAST", "DESC NULLS FIRST", "DESC NULLS LAST":
	default:
		return nil, fmt.Errorf("repository: invalid order direction %q", order)
	}
	expr := "?TableAlias.?"
	if dir != "" {
		expr += " " + dir
	}
	return q.OrderExpr(expr, bun.Ident(f.Column)), nil
}

// compileSet compiles conds against m. alias is the bun join alias of m
// ("" for the queried model) and path its relation path.
func (c *whereCompiler) compileSet(m *Metadata, alias, path string, conds []types.Condition) ([]predicate, error) {
	out := make([]predicate, 0, len(conds))
	for _, cond := range conds {
		switch cond.Op {
		case types.OpRaw:
			if cond.Filter == nil || cond.Filter.Schema == "" {
				continue
			}
			out = append(out, predicate{cond.Filter.Schema, cond.Filter.Args})
		case types.OpNested:
			f, target, err := m.Related(cond.Field)
			if err != nil {
				return nil, err
			}
			if !f.Joinable() {
				return nil, fmt.Errorf("%w: cannot filter through %s relation %s.%s", ErrUnknownField, f.Relation, m.Type, f.GoName)
			}
			nestedPath, nestedAlias := f.GoName, f.Column
			if path != "" {
				nestedPath = path + "." + f.GoName
				nestedAlias = alias + "__" + f.Column
			}
			c.addRelation(nestedPath)
			preds, err := c.compileSet(target, nestedAlias, nestedPath, cond.Nested)
			if err != nil {
				return nil, err
			}
			out = append(out, preds...)
		default:
			f, err := m.Field(cond.Field)
			if err != nil {
				return nil, err
			}
			if f.IsRelation() {
				return nil, fmt.Errorf("%w: %s.%s is a relation, use a nested condition", ErrUnknownField, m.Type, f.GoName)
			}
			p, err := c.leaf(alias, f, cond)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *whereCompiler) leaf(alias string, f *Field, cond types.Condition) (predicate, error) {
	expr, args := "?TableAlias.?", []interface{}{bun.Ident(f.Column)}
	if alias != "" {
		expr, args = "?.?", []interface{}{bun.Ident(alias), bun.Ident(f.Column)}
	}
	binary := func(op string) predicate {
		return predicate{expr + " " + op + " ?", append(args, cond.Value)}
	}

	switch cond.Op {
	case types.OpEq:
		if cond.Value == nil {
			return predicate{expr + " IS NULL", args}, nil
		}
		return binary("="), nil
	case types.OpNe:
		if cond.Value == nil {
			return predicate{expr + " IS NOT NULL", args}, nil
		}
		return binary("<>"), nil
	case types.OpGt:
		return binary(">"), nil
	case types.OpGe:
		return binary(">="), nil
	case types.OpLt:
		return binary("<"), nil
	case types.OpLe:
		return binary("<="), nil
	case types.OpLike:
		return binary("LIKE"), nil
	case types.OpILike:
		if c.pg {
			return binary("ILIKE"), nil
		}
		return predicate{"LOWER(" + expr + ") LIKE LOWER(?)", append(args, cond.Value)}, nil
	case types.OpIsNull:
		return predicate{expr + " IS NULL", args}, nil
	case types.OpNotNull:
		return predicate{expr + " IS NOT NULL", args}, nil
	case types.OpIn, types.OpNotIn:
		rv := reflect.ValueOf(cond.Value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return predicate{}, fmt.Errorf("repository: %s on %s needs a slice, got %T", cond.Op, f.GoName, cond.Value)
		}
		if rv.Len() == 0 {
			if cond.Op == types.OpIn {
				return predicate{"1 = 0", nil}, nil
			}
			return predicate{"1 = 1", nil}, nil
		}
		op := "IN"
		if cond.Op == types.OpNotIn {
			op = "NOT IN"
		}
		return predicate{expr + " " + op + " (?)", append(args, bun.In(cond.Value))}, nil
	}
	return predicate{}, fmt.Errorf("repository: unsupported operator %s on %s", cond.Op, f.GoName)
}
