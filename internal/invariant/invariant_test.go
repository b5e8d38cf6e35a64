package invariant

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
	"lazyres/internal/phase"
)

func TestErrorMatching(t *testing.T) {
	fn := &decl.Function{Header: decl.Header{Name: "run"}}
	f := &decl.File{Package: "demo", Decls: []decl.Decl{fn}}
	decl.Link(f)

	err := fmt.Errorf("step: %w", New(PhaseOrder, fn, phase.Types, "path below %s", phase.SuperTypes))
	if !errors.Is(err, &Error{Kind: PhaseOrder}) {
		t.Fatalf("errors.Is by kind failed for %v", err)
	}
	if errors.Is(err, &Error{Kind: Postcondition}) {
		t.Fatalf("errors.Is matched a different kind")
	}
	if k, ok := KindOf(err); !ok || k != PhaseOrder {
		t.Fatalf("KindOf = %v, %v", k, ok)
	}
	var ie *Error
	if !errors.As(err, &ie) || ie.File != f {
		t.Fatalf("owning file not recorded")
	}
	if !strings.Contains(err.Error(), "function demo.run") {
		t.Fatalf("message %q does not name the declaration", err.Error())
	}
	d := ie.Diagnostic()
	if d.Code != diag.ResPhaseOrder || !d.Code.Internal() || len(d.Notes) != 1 {
		t.Fatalf("diagnostic = %+v", d)
	}
}

func TestKindCodes(t *testing.T) {
	seen := map[diag.Code]Kind{}
	for k := MissingFile; k <= Inconsistent; k++ {
		c := k.Code()
		if prev, dup := seen[c]; dup {
			t.Fatalf("%v and %v share code %v", prev, k, c)
		}
		seen[c] = k
		if k.String() == "unknown" {
			t.Fatalf("kind %d has no name", k)
		}
	}
}
