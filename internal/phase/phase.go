package phase

import (
	"fmt"
	"strings"
)

// Phase is a milestone of semantic completeness for a declaration.
//
// Phases are strictly ordered. A declaration stamped with phase P has all
// phase-dependent data for every phase <= P computed:
//
//	Raw -> Imports -> SuperTypes -> SealedClassInheritors -> Types -> Status ->
//	Contracts -> ImplicitTypesBodyResolve -> BodyResolve
//
// with the plugin phases interleaved where compiler plugins would run.
type Phase uint8

const (
	Raw                          Phase = iota // tree built, nothing resolved
	Imports                                   // file imports resolved (file-wide)
	AnnotationsForPlugins                     // plugin hook
	SuperTypes                                // class supertypes resolved
	SealedClassInheritors                     // sealed hierarchy known
	Types                                     // explicit type references resolved
	Status                                    // visibility and modality computed
	ArgumentsOfPluginAnnotations              // plugin hook
	Contracts                                 // contract blocks parsed
	NewMembersGeneration                      // plugin hook
	ImplicitTypesBodyResolve                  // omitted return types inferred
	BodyResolve                               // bodies fully resolved
)

// LastNonLazy is the last phase that is only ever computed for a whole file.
// Everything after it is resolved per designation.
const LastNonLazy = Imports

// Last is the terminal phase.
const Last = BodyResolve

var names = [...]string{
	Raw:                          "Raw",
	Imports:                      "Imports",
	AnnotationsForPlugins:        "AnnotationsForPlugins",
	SuperTypes:                   "SuperTypes",
	SealedClassInheritors:        "SealedClassInheritors",
	Types:                        "Types",
	Status:                       "Status",
	ArgumentsOfPluginAnnotations: "ArgumentsOfPluginAnnotations",
	Contracts:                    "Contracts",
	NewMembersGeneration:         "NewMembersGeneration",
	ImplicitTypesBodyResolve:     "ImplicitTypesBodyResolve",
	BodyResolve:                  "BodyResolve",
}

func (p Phase) String() string {
	if int(p) < len(names) {
		return names[p]
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Valid reports whether p is one of the declared phases.
func (p Phase) Valid() bool {
	return p <= Last
}

// Next returns the successor of p. Calling Next on the terminal phase is a
// programming error.
func (p Phase) Next() Phase {
	if p >= Last {
		panic(fmt.Sprintf("phase: %s has no successor", p))
	}
	return p + 1
}

// IsPlugin reports whether p is a plugin hook. The lazy loop advances past
// plugin phases without running anything for them.
func (p Phase) IsPlugin() bool {
	switch p {
	case AnnotationsForPlugins, ArgumentsOfPluginAnnotations, NewMembersGeneration:
		return true
	}
	return false
}

// IsNonLazy reports whether p is only computed by the eager whole-file pass.
func (p Phase) IsNonLazy() bool {
	return p <= LastNonLazy
}

// IsLazy reports whether p is resolved by a designated per-phase transformer.
func (p Phase) IsLazy() bool {
	return !p.IsNonLazy() && !p.IsPlugin()
}

// All returns every phase in order.
func All() []Phase {
	out := make([]Phase, 0, len(names))
	for p := Raw; ; p++ {
		out = append(out, p)
		if p == Last {
			return out
		}
	}
}

// Min returns the earlier of two phases.
func Min(a, b Phase) Phase {
	if a < b {
		return a
	}
	return b
}

// Max returns the later of two phases.
func Max(a, b Phase) Phase {
	if a > b {
		return a
	}
	return b
}

// Parse converts a user-supplied phase name. Matching ignores case and the
// separators '-', '_' and ' ', so "body-resolve", "BODY_RESOLVE" and
// "BodyResolve" are equivalent. A few short aliases are accepted as well.
func Parse(s string) (Phase, error) {
	key := normalize(s)
	switch key {
	case "body":
		return BodyResolve, nil
	case "implicit", "implicittypes":
		return ImplicitTypesBodyResolve, nil
	case "supertype":
		return SuperTypes, nil
	case "sealed":
		return SealedClassInheritors, nil
	}
	for i, name := range names {
		if normalize(name) == key {
			return Phase(i), nil
		}
	}
	return Raw, fmt.Errorf("unknown phase %q", s)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
