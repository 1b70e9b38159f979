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
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("crudkit: entity not found")

	// ErrMisconfigured wraps construction failures: a nil store, an unknown
	// or mistyped primary key, or an invalid search path.
	ErrMisconfigured = errors.New("crudkit: service misconfigured")

	// ErrMergeContract is returned when a merge returns a pointer other than
	// the target it was given.
	ErrMergeContract = errors.New("crudkit: merge must return its target")

	ErrInvalidSelector = errors.New("crudkit: empty selector")
)

// NotFoundError reports a selector that matched no entity.
type NotFoundError struct {
	Entity    string
	Operation string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("crudkit: %s not found (%s)", e.Entity, e.Operation)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func misconfigured(err error) error {
	return fmt.Errorf("%w: %w", ErrMisconfigured, err)
}
