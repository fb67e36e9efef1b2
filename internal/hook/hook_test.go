package hook

import (
	"errors"
	"testing"
)

func TestOnAndFireBestEffort(t *testing.T) {
	b := New()
	var seen []string
	b.On(CommandBefore, func(p Payload) error {
		seen = append(seen, p.Command)
		return nil
	})
	b.On(CommandBefore, func(p Payload) error {
		return errors.New("boom")
	})

	errs := b.FireBestEffort(CommandBefore, Payload{Command: "echo hi"})
	if len(seen) != 1 || seen[0] != "echo hi" {
		t.Fatalf("got %v", seen)
	}
	if len(errs) != 1 {
		t.Fatalf("expected one collected error, got %v", errs)
	}
}

func TestFireFailFastStopsAtFirstError(t *testing.T) {
	b := New()
	ran := 0
	b.On(DirectoryChange, func(p Payload) error {
		ran++
		return errors.New("stop")
	})
	b.On(DirectoryChange, func(p Payload) error {
		ran++
		return nil
	})

	if err := b.FireFailFast(DirectoryChange, Payload{}); err == nil {
		t.Fatalf("expected an error")
	}
	if ran != 1 {
		t.Fatalf("expected only the first listener to run, ran=%d", ran)
	}
}

func TestClearRemovesListeners(t *testing.T) {
	b := New()
	b.On(CommandAfter, func(p Payload) error { return nil })
	b.Clear()
	if errs := b.FireBestEffort(CommandAfter, Payload{}); len(errs) != 0 {
		t.Fatalf("expected no listeners after Clear")
	}
}
