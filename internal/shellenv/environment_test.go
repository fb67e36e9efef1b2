package shellenv

import "testing"

func TestSetDoesNotExportByDefault(t *testing.T) {
	e := New()
	e.Set("FOO", "bar")
	if e.IsExported("FOO") {
		t.Fatal("a plain Set should not export without allexport or an explicit export")
	}
}

func TestSetAllExportExportsSubsequentAssignments(t *testing.T) {
	e := New()
	e.Set("BEFORE", "1")
	e.SetAllExport(true)
	e.Set("AFTER", "2")

	if e.IsExported("BEFORE") {
		t.Fatal("allexport should not retroactively export variables set before it was enabled")
	}
	if !e.IsExported("AFTER") {
		t.Fatal("expected a variable assigned while allexport is enabled to be exported")
	}

	e.SetAllExport(false)
	e.Set("LATER", "3")
	if e.IsExported("LATER") {
		t.Fatal("expected allexport to stop exporting new assignments once disabled")
	}
}

func TestExportExplicitlyMarksVariable(t *testing.T) {
	e := New()
	e.Set("FOO", "bar")
	e.Export("FOO")
	if !e.IsExported("FOO") {
		t.Fatal("expected Export to mark FOO exported")
	}
}
