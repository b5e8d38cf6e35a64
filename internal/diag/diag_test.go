package diag

import (
	"strings"
	"sync"
	"testing"

	"lazyres/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	late := NewError(SemaUnresolvedType, source.Span{File: 1, Line: 9, Col: 1}, "late")
	early := NewError(SemaUnresolvedImport, source.Span{File: 1, Line: 2, Col: 1}, "early")
	if !bag.Add(late) || !bag.Add(early) {
		t.Fatalf("Add within limit failed")
	}
	if bag.Add(early) {
		t.Fatalf("Add beyond limit succeeded")
	}
	bag.Sort()
	if bag.Items()[0].Message != "early" {
		t.Fatalf("Sort kept %q first", bag.Items()[0].Message)
	}
	if !bag.HasErrors() || bag.HasInternal() {
		t.Fatalf("HasErrors/HasInternal mismatch")
	}
}

func TestCodeIDs(t *testing.T) {
	tests := map[Code]string{
		SemaUnresolvedType:      "SEM3002",
		ResDesignationNotPassed: "RES7004",
		IOLoadFileError:         "IO4001",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Fatalf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if !ResPhaseOrder.Internal() || SemaUnresolvedType.Internal() {
		t.Fatalf("Internal() classification is wrong")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: 1, Line: 1, Col: 1}
	for i := 0; i < 3; i++ {
		r.Report(SemaUnresolvedType, SevError, sp, "unresolved type Foo", nil)
	}
	r.Report(SemaUnresolvedType, SevError, sp, "unresolved type Bar", nil)
	if bag.Len() != 2 {
		t.Fatalf("bag.Len() = %d, want 2", bag.Len())
	}
}

func TestSyncReporterConcurrent(t *testing.T) {
	bag := NewBag(1000)
	r := NewSyncReporter(BagReporter{Bag: bag})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ReportError(r, SemaUnresolvedReference, source.Span{}, "x").Emit()
		}()
	}
	wg.Wait()
	if bag.Len() != 50 {
		t.Fatalf("bag.Len() = %d, want 50", bag.Len())
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("tree.yaml")
	d := NewError(SemaUnresolvedType, source.Span{File: id, Line: 3, Col: 7}, "unresolved type Foo").
		WithNote(source.Span{File: id, Line: 1, Col: 1}, "file starts here")
	out := FormatShort([]Diagnostic{d}, fs, true)
	if !strings.HasPrefix(out, "tree.yaml:3:7: ERROR SEM3002: unresolved type Foo\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "note: tree.yaml:1:1: file starts here") {
		t.Fatalf("note missing:\n%s", out)
	}
}

func TestSeverityParseAndFilter(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
		ok   bool
	}{
		{"info", SevInfo, true},
		{"Warn", SevWarning, true},
		{" ERROR ", SevError, true},
		{"fatal", SevInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Fatalf("ParseSeverity(%q) = %v, %v", tt.in, got, err)
		}
	}

	bag := NewBag(4)
	bag.Add(New(SevInfo, ObsTimings, source.Span{}, "timings"))
	bag.Add(New(SevWarning, ProjImportCycle, source.Span{}, "cycle"))
	bag.Add(NewError(ResInternalError, source.Span{}, "boom"))
	if got := bag.Filter(SevWarning).Len(); got != 2 {
		t.Fatalf("Filter(warning) kept %d", got)
	}
	if got := bag.Filter(SevError).Items(); len(got) != 1 || got[0].Message != "boom" {
		t.Fatalf("Filter(error) = %+v", got)
	}
}

func TestBagDedupKeepsFirst(t *testing.T) {
	bag := NewBag(10)
	at := source.Span{File: 1, Line: 2, Col: 1}
	bag.Add(New(SevWarning, ProjImportCycle, at, "cycle a -> b").WithNote(at, "first"))
	bag.Add(New(SevWarning, ProjImportCycle, at, "cycle a -> b"))
	bag.Add(New(SevWarning, ProjImportCycle, source.Span{File: 2, Line: 1, Col: 1}, "cycle a -> b"))
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("Dedup left %d items", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("first copy should survive: %+v", bag.Items()[0])
	}
}
