package expand

import (
	"strings"
	"testing"
)

func TestRunSandboxedAllowsAllowlisted(t *testing.T) {
	e := New(DefaultCacheSizes())
	ctx := newCtx()
	ctx.SubstitutionMode = ModeSandbox
	ctx.Environment["PATH"] = "/bin:/usr/bin"

	got, err := e.runSandboxed("echo hi", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(got)) != "hi" {
		t.Fatalf("got %q", got)
	}
}

func TestRunSandboxedRejectsNonAllowlisted(t *testing.T) {
	e := New(DefaultCacheSizes())
	ctx := newCtx()
	ctx.SubstitutionMode = ModeSandbox

	_, err := e.runSandboxed("cat /etc/passwd", ctx)
	if err == nil {
		t.Fatal("expected sandbox to reject a non-allowlisted command")
	}
}

func TestRunSandboxedRejectsMetacharacters(t *testing.T) {
	e := New(DefaultCacheSizes())
	ctx := newCtx()
	ctx.SubstitutionMode = ModeSandbox

	_, err := e.runSandboxed("echo hi; rm -rf /", ctx)
	if err == nil {
		t.Fatal("expected sandbox to reject shell metacharacters")
	}
}

func TestExpandCommandSubstitutionDollarParen(t *testing.T) {
	e := New(DefaultCacheSizes())
	ctx := newCtx()
	ctx.SubstitutionMode = ModeSandbox

	got, err := e.expandCommandSubstitution("prefix-$(echo mid)-suffix", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "prefix-mid-suffix" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandCommandSubstitutionBacktick(t *testing.T) {
	e := New(DefaultCacheSizes())
	ctx := newCtx()
	ctx.SubstitutionMode = ModeSandbox

	got, err := e.expandCommandSubstitution("prefix-`echo mid`-suffix", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "prefix-mid-suffix" {
		t.Fatalf("got %q", got)
	}
}

func TestFindParenCloseNested(t *testing.T) {
	s := "echo $(echo (nested))"
	end := findParenClose(s, 7)
	if end < 0 || s[end] != ')' {
		t.Fatalf("expected to find matching close paren, got index %d", end)
	}
	if s[7:end] != "echo (nested)" {
		t.Fatalf("got inner %q", s[7:end])
	}
}
