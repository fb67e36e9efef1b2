package fsutil

import (
	"os"
	"testing"

	"github.com/spf13/afero"
)

func withMemFS(t *testing.T) {
	t.Helper()
	prev := FS
	FS = afero.NewMemMapFs()
	t.Cleanup(func() { FS = prev })
}

func TestWriteFileThenReadFile(t *testing.T) {
	withMemFS(t)

	if err := WriteFile("/tmp/greeting.txt", []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := ReadFile("/tmp/greeting.txt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q", data)
	}
}

func TestExistsAndIsDir(t *testing.T) {
	withMemFS(t)

	if Exists("/nope") {
		t.Fatalf("expected /nope to not exist")
	}
	if err := MkdirAll("/a/b/c", 0o755); err != nil {
		t.Fatalf("mkdirall: %v", err)
	}
	if !Exists("/a/b/c") {
		t.Fatalf("expected /a/b/c to exist")
	}
	if !IsDir("/a/b/c") {
		t.Fatalf("expected /a/b/c to be a directory")
	}

	if err := WriteFile("/a/b/c/f.txt", []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if IsDir("/a/b/c/f.txt") {
		t.Fatalf("expected /a/b/c/f.txt to not be a directory")
	}
}

func TestOpenFileAppend(t *testing.T) {
	withMemFS(t)

	f, err := OpenFile("/log.txt", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.Write([]byte("first\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f2, err := OpenFile("/log.txt", os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := f2.Write([]byte("second\n")); err != nil {
		t.Fatalf("append write: %v", err)
	}
	if err := f2.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := ReadFile("/log.txt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Fatalf("got %q", data)
	}
}

func TestStatMissingFile(t *testing.T) {
	withMemFS(t)

	if _, err := Stat("/missing"); err == nil {
		t.Fatalf("expected an error statting a missing file")
	}
}
