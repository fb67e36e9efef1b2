package expand

import (
	"math"
	"testing"
)

func TestExpandArithmeticBasic(t *testing.T) {
	e := New(DefaultCacheSizes())
	ctx := newCtx()

	cases := map[string]string{
		"$((1+2))":       "3",
		"$((2*3+4))":     "10",
		"$((2*(3+4)))":   "14",
		"$((10/3))":      "3",
		"$((10%3))":      "1",
		"$((-5+2))":      "-3",
		"$((0x10))":      "16",
		"$((010))":       "8",
		"result=$((1+1))": "result=2",
	}
	for in, want := range cases {
		got, err := e.expandArithmetic(in, ctx)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("%q: got %q, want %q", in, got, want)
		}
	}
}

func TestExpandArithmeticDivisionByZero(t *testing.T) {
	e := New(DefaultCacheSizes())
	ctx := newCtx()

	got, err := e.expandArithmetic("$((1/0))", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0" {
		t.Fatalf("got %q, want 0 for division by zero", got)
	}
}

func TestExpandArithmeticIdentifiers(t *testing.T) {
	e := New(DefaultCacheSizes())
	ctx := newCtx()
	ctx.Set("X", "4")
	ctx.Set("Y", "5")

	got, err := e.expandArithmetic("$((X+Y))", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "9" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandArithmeticUnsetIdentifierIsZero(t *testing.T) {
	e := New(DefaultCacheSizes())
	ctx := newCtx()

	got, err := e.expandArithmetic("$((UNSET+1))", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandArithmeticOverflowWraps(t *testing.T) {
	e := New(DefaultCacheSizes())
	ctx := newCtx()

	got, err := e.expandArithmetic("$((9223372036854775807+1))", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := math.MinInt64
	if got != "-9223372036854775808" {
		t.Fatalf("got %q, want wraparound to %d", got, want)
	}
}

func TestExpandArithmeticCache(t *testing.T) {
	e := New(DefaultCacheSizes())
	ctx := newCtx()
	ctx.Set("X", "2")

	first, err := e.expandArithmetic("$((X+3))", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != "5" {
		t.Fatalf("got %q", first)
	}

	// The cache key is the post-substitution numeric expression, so a
	// changed identifier value changes the key and re-evaluates.
	ctx.Set("X", "100")
	second, err := e.expandArithmetic("$((X+3))", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != "103" {
		t.Fatalf("got %q, want fresh substitution result 103", second)
	}
}

func TestExpandArithmeticResetCaches(t *testing.T) {
	e := New(DefaultCacheSizes())
	ctx := newCtx()

	if _, err := e.expandArithmetic("$((1+1))", ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.ResetCaches()
	got, err := e.expandArithmetic("$((1+1))", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2" {
		t.Fatalf("got %q", got)
	}
}
