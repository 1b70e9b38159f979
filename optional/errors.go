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

package optional

import "errors"

var (
	// ErrIllegalArgument is returned when a nil value or nil supplier is given
	// where a value is required.
	ErrIllegalArgument = errors.New("optional: value should not be nil")

	// ErrNoSuchElement is returned by Get when no usable value is present.
	ErrNoSuchElement = errors.New("optional: no value present")
)
