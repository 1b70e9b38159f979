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

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name string
}

func TestOf(t *testing.T) {
	_, err := Of[*widget](nil)
	assert.ErrorIs(t, err, ErrIllegalArgument)

	_, err = Of[map[string]int](nil)
	assert.ErrorIs(t, err, ErrIllegalArgument)

	o, err := Of(5)
	require.NoError(t, err)
	assert.True(t, o.IsPresent())

	assert.Panics(t, func() { MustOf[[]int](nil) })
}

func TestMapGet(t *testing.T) {
	o := Map(MustOf(5), func(x int) int { return x * 2 })
	v, err := o.Get()
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	s := Map(MustOf(&widget{Name: "a"}), func(w *widget) string { return w.Name })
	assert.Equal(t, "a", s.OrElse("none"))

	// a nil mapping result collapses to empty
	n := Map(MustOf(1), func(int) *widget { return nil })
	assert.True(t, n.IsEmpty())
}

func TestEmpty(t *testing.T) {
	e := Empty[int]()
	assert.True(t, e.IsEmpty())
	assert.False(t, e.IsPresent())
	assert.Equal(t, 7, e.OrElse(7))
	assert.Equal(t, 9, e.OrElseGet(func() int { return 9 }))
	assert.Equal(t, 0, e.OrZero())

	_, err := e.Get()
	assert.ErrorIs(t, err, ErrNoSuchElement)

	// every empty value is the same sentinel
	assert.Equal(t, Empty[*widget](), OfNullable[*widget](nil))
	assert.Equal(t, Empty[*widget](), Map(Empty[int](), func(int) *widget { return &widget{} }))
}

func TestOrElseThrow(t *testing.T) {
	boom := errors.New("boom")

	_, err := Empty[string]().OrElseThrow(boom)
	assert.Same(t, boom, err)

	_, err = Empty[string]().OrElseThrowFunc(func() error { return boom })
	assert.Same(t, boom, err)

	v, err := MustOf("x").OrElseThrow(boom)
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestFalsyValuesTreatedAsAbsent(t *testing.T) {
	zero := OfNullable(0)
	assert.True(t, zero.IsPresent(), "zero is wrapped, it is not nil")
	_, err := zero.Get()
	assert.ErrorIs(t, err, ErrNoSuchElement)
	assert.Equal(t, 3, zero.OrElse(3))

	blank := MustOf("")
	assert.True(t, blank.IsPresent())
	assert.Equal(t, "fallback", blank.OrElse("fallback"))
	_, err = blank.OrElseThrow(ErrIllegalArgument)
	assert.ErrorIs(t, err, ErrIllegalArgument)

	no := MustOf(false)
	assert.True(t, no.OrElse(true))
	assert.True(t, Map(no, func(b bool) string { return "seen" }).IsEmpty())

	nan := MustOf(math.NaN())
	assert.Equal(t, 1.5, nan.OrElse(1.5))

	// falsy values never reach the predicate
	called := false
	assert.True(t, zero.Filter(func(int) bool { called = true; return true }).IsEmpty())
	assert.False(t, called)

	// empty but non-nil containers and structs are truthy
	assert.Equal(t, []int{}, MustOf([]int{}).OrElse(nil))
	assert.Equal(t, widget{}, MustOf(widget{}).OrElse(widget{Name: "other"}))

	// mapping to a falsy non-nil value keeps it wrapped
	m := Map(MustOf(4), func(int) int { return 0 })
	assert.True(t, m.IsPresent())
	assert.Equal(t, -1, m.OrElse(-1))
}

func TestFlatMap(t *testing.T) {
	half := func(x int) Optional[int] {
		if x%2 != 0 {
			return Empty[int]()
		}
		return MustOf(x / 2)
	}
	assert.Equal(t, 2, FlatMap(MustOf(4), half).OrElse(0))
	assert.True(t, FlatMap(MustOf(3), half).IsEmpty())
	assert.True(t, FlatMap(Empty[int](), half).IsEmpty())
}

func TestFilter(t *testing.T) {
	even := func(x int) bool { return x%2 == 0 }
	assert.Equal(t, 4, MustOf(4).Filter(even).OrElse(0))
	assert.True(t, MustOf(5).Filter(even).IsEmpty())
}

func TestOfAsync(t *testing.T) {
	ctx := context.Background()

	o, err := OfAsync(ctx, func(context.Context) (*widget, error) { return &widget{Name: "w"}, nil })
	require.NoError(t, err)
	w, err := o.Get()
	require.NoError(t, err)
	assert.Equal(t, "w", w.Name)

	o, err = OfAsync(ctx, func(context.Context) (*widget, error) { return nil, nil })
	require.NoError(t, err)
	assert.True(t, o.IsEmpty())

	// a falsy result is not wrapped at all
	z, err := OfAsync(ctx, func(context.Context) (int, error) { return 0, nil })
	require.NoError(t, err)
	assert.True(t, z.IsEmpty())

	_, err = OfAsync[int](ctx, nil)
	assert.ErrorIs(t, err, ErrIllegalArgument)
}

func TestOfAsyncErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("store down")
	failing := func(context.Context) (*widget, error) { return nil, boom }

	_, err := OfAsync(ctx, failing)
	assert.ErrorIs(t, err, boom)

	o, err := OfAsync(ctx, failing, EmptyOnError())
	require.NoError(t, err)
	assert.True(t, o.IsEmpty())
}

func TestOfAsyncCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	defer close(release)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := OfAsync(ctx, func(context.Context) (int, error) {
		<-release
		return 1, nil
	}, EmptyOnError())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOfFuture(t *testing.T) {
	o, err := OfFuture(context.Background(), Resolved("ready"))
	require.NoError(t, err)
	assert.Equal(t, "ready", o.OrZero())

	_, err = OfFuture[string](context.Background(), nil)
	assert.ErrorIs(t, err, ErrIllegalArgument)
}

func TestOrElseAsync(t *testing.T) {
	ctx := context.Background()

	v, err := Empty[int]().OrElseAsync(ctx, Resolved(8))
	require.NoError(t, err)
	assert.Equal(t, 8, v)

	v, err = MustOf(2).OrElseAsync(ctx, Resolved(8))
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	v, err = Empty[int]().OrElseGetAsync(ctx, func(context.Context) (int, error) { return 11, nil })
	require.NoError(t, err)
	assert.Equal(t, 11, v)

	boom := errors.New("boom")
	_, err = Empty[int]().OrElseGetAsync(ctx, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestTruthy(t *testing.T) {
	var nilPtr *widget
	var nilIface error
	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"nil pointer", nilPtr, false},
		{"nil interface", nilIface, false},
		{"zero int", 0, false},
		{"zero uint8", uint8(0), false},
		{"zero float", 0.0, false},
		{"nan", math.NaN(), false},
		{"empty string", "", false},
		{"false", false, false},
		{"int", -1, true},
		{"string", "a", true},
		{"true", true, true},
		{"pointer", &widget{}, true},
		{"empty slice", []string{}, true},
		{"empty map", map[string]int{}, true},
		{"struct", widget{}, true},
		{"time", time.Time{}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Truthy(c.in))
		})
	}
}
