package phase

import (
	"sync"
	"testing"
)

func TestPhaseOrderAndNext(t *testing.T) {
	all := All()
	if len(all) != int(Last)+1 {
		t.Fatalf("len(All()) = %d, want %d", len(all), int(Last)+1)
	}
	for i := 0; i+1 < len(all); i++ {
		if got := all[i].Next(); got != all[i+1] {
			t.Fatalf("%s.Next() = %s, want %s", all[i], got, all[i+1])
		}
		if all[i] >= all[i+1] {
			t.Fatalf("phases not strictly ordered at %s", all[i])
		}
	}
}

func TestNextOnTerminalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("BodyResolve.Next() did not panic")
		}
	}()
	_ = BodyResolve.Next()
}

func TestTraits(t *testing.T) {
	tests := []struct {
		p       Phase
		plugin  bool
		nonLazy bool
	}{
		{Raw, false, true},
		{Imports, false, true},
		{AnnotationsForPlugins, true, false},
		{SuperTypes, false, false},
		{Types, false, false},
		{ArgumentsOfPluginAnnotations, true, false},
		{NewMembersGeneration, true, false},
		{BodyResolve, false, false},
	}
	for _, tt := range tests {
		if got := tt.p.IsPlugin(); got != tt.plugin {
			t.Errorf("%s.IsPlugin() = %v, want %v", tt.p, got, tt.plugin)
		}
		if got := tt.p.IsNonLazy(); got != tt.nonLazy {
			t.Errorf("%s.IsNonLazy() = %v, want %v", tt.p, got, tt.nonLazy)
		}
	}
	if !LastNonLazy.IsNonLazy() || LastNonLazy.Next().IsNonLazy() {
		t.Fatalf("LastNonLazy boundary is wrong")
	}
}

func TestParse(t *testing.T) {
	tests := map[string]Phase{
		"body":                        BodyResolve,
		"BODY_RESOLVE":                BodyResolve,
		"body-resolve":                BodyResolve,
		"Types":                       Types,
		"implicit-types-body-resolve": ImplicitTypesBodyResolve,
		"super_types":                 SuperTypes,
		" status ":                    Status,
	}
	for in, want := range tests {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := Parse("linking"); err == nil {
		t.Fatalf("Parse(linking) succeeded, want error")
	}
}

func TestStampIsMonotonic(t *testing.T) {
	var s Stamp
	if !s.Advance(Types) {
		t.Fatalf("Advance(Types) on fresh stamp = false")
	}
	if s.Advance(SuperTypes) {
		t.Fatalf("Advance to an earlier phase reported a change")
	}
	if got := s.Load(); got != Types {
		t.Fatalf("Load() = %s, want Types", got)
	}
	if s.Advance(Types) {
		t.Fatalf("Advance to the same phase reported a change")
	}
}

func TestStampConcurrentAdvance(t *testing.T) {
	var s Stamp
	var wg sync.WaitGroup
	for _, p := range All() {
		wg.Add(1)
		go func(p Phase) {
			defer wg.Done()
			s.Advance(p)
		}(p)
	}
	wg.Wait()
	if got := s.Load(); got != Last {
		t.Fatalf("Load() = %s, want %s", got, Last)
	}
}
