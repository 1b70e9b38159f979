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

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// Operator is the comparison applied by a Condition.
type Operator int

const (
	OpEq Operator = iota + 1
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpIn
	OpNotIn
	OpLike
	OpILike
	OpIsNull
	OpNotNull
	OpNested
	OpRaw
)

var operatorNames = map[Operator][2]string{
	OpEq:      {"eq", "equal to"},
	OpNe:      {"ne", "not equal to"},
	OpGt:      {"gt", "greater than"},
	OpGe:      {"ge", "greater than or equal to"},
	OpLt:      {"lt", "less than"},
	OpLe:      {"le", "less than or equal to"},
	OpIn:      {"in", "member of"},
	OpNotIn:   {"not_in", "not a member of"},
	OpLike:    {"like", "matches pattern"},
	OpILike:   {"ilike", "matches pattern ignoring case"},
	OpIsNull:  {"is_null", "is null"},
	OpNotNull: {"not_null", "is not null"},
	OpNested:  {"nested", "applies to a related entity"},
	OpRaw:     {"raw", "raw sql fragment"},
}

var _ BaseEnum = OpEq

func (o Operator) IsValid() bool {
	_, ok := operatorNames[o]
	return ok
}

func (o Operator) Number() int {
	if !o.IsValid() {
		return IllegalValue
	}
	return int(o)
}

func (o Operator) Name() string {
	if n, ok := operatorNames[o]; ok {
		return n[0]
	}
	return IllegalName
}

func (o Operator) Desc() string {
	if n, ok := operatorNames[o]; ok {
		return n[1]
	}
	return IllegalDesc
}

func (o Operator) String() string { return o.Name() }
