package decl

import "strings"

// RefState is the resolution state of a type reference.
type RefState uint8

const (
	// RefUnresolved is a written type that has not been looked up yet.
	RefUnresolved RefState = iota
	// RefImplicit is an omitted type that must be inferred from a body.
	RefImplicit
	// RefResolved is a type bound to a declaration or builtin.
	RefResolved
	// RefError is a type that failed to resolve. It counts as resolved.
	RefError
)

func (s RefState) String() string {
	switch s {
	case RefUnresolved:
		return "unresolved"
	case RefImplicit:
		return "implicit"
	case RefResolved:
		return "resolved"
	case RefError:
		return "error"
	}
	return "unknown"
}

// TypeRef is a type reference as written in source plus its resolution.
type TypeRef struct {
	Text     string
	State    RefState
	Resolved string // fully qualified name once resolved
	Nullable bool
	Args     []*TypeRef
	Target   Decl // declaration the type resolved to, nil for builtins
	Err      string
}

// Implicit returns a reference for an omitted type.
func Implicit() *TypeRef { return &TypeRef{State: RefImplicit} }

// Unresolved returns a reference for written type text.
func Unresolved(text string) *TypeRef {
	return &TypeRef{Text: strings.TrimSpace(text), State: RefUnresolved}
}

// IsResolved reports whether the reference is in resolved (or error) form.
func (t *TypeRef) IsResolved() bool {
	return t != nil && (t.State == RefResolved || t.State == RefError)
}

// IsImplicit reports whether the type is still waiting for inference.
func (t *TypeRef) IsImplicit() bool {
	return t != nil && t.State == RefImplicit
}

// Omitted reports whether the type was left out of the source. Unlike
// IsImplicit it stays true after inference fills the reference.
func (t *TypeRef) Omitted() bool {
	return t != nil && t.Text == ""
}

// Resolve binds the reference.
func (t *TypeRef) Resolve(fq string, target Decl) {
	t.State = RefResolved
	t.Resolved = fq
	t.Target = target
	t.Err = ""
}

// Fail marks the reference as an error type.
func (t *TypeRef) Fail(reason string) {
	t.State = RefError
	t.Resolved = ""
	t.Target = nil
	t.Err = reason
}

func (t *TypeRef) String() string {
	if t == nil {
		return "<none>"
	}
	switch t.State {
	case RefImplicit:
		return "<implicit>"
	case RefError:
		return "<error: " + t.Err + ">"
	case RefResolved:
		var sb strings.Builder
		sb.WriteString(t.Resolved)
		if len(t.Args) > 0 {
			sb.WriteByte('<')
			for i, a := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(a.String())
			}
			sb.WriteByte('>')
		}
		if t.Nullable {
			sb.WriteByte('?')
		}
		return sb.String()
	}
	return t.Text
}

// Visibility of a declaration.
type Visibility uint8

const (
	VisibilityUnknown Visibility = iota
	Public
	Internal
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Internal:
		return "internal"
	case Protected:
		return "protected"
	case Private:
		return "private"
	}
	return "unknown"
}

// Modality of a declaration.
type Modality uint8

const (
	ModalityUnknown Modality = iota
	Final
	Open
	Abstract
	Sealed
)

func (m Modality) String() string {
	switch m {
	case Final:
		return "final"
	case Open:
		return "open"
	case Abstract:
		return "abstract"
	case Sealed:
		return "sealed"
	}
	return "unknown"
}

// Modifiers are the modifiers written in source.
type Modifiers struct {
	Visibility Visibility
	Modality   Modality
	Override   bool
	Inline     bool
}

// Status is the computed status of a declaration.
type Status struct {
	Visibility Visibility
	Modality   Modality
	Override   bool
	Resolved   bool
}

// EffectKind classifies a contract clause.
type EffectKind uint8

const (
	EffectInvalid EffectKind = iota
	EffectReturns
	EffectReturnsNotNull
	EffectCallsInPlace
)

func (k EffectKind) String() string {
	switch k {
	case EffectReturns:
		return "returns"
	case EffectReturnsNotNull:
		return "returnsNotNull"
	case EffectCallsInPlace:
		return "callsInPlace"
	}
	return "invalid"
}

// Effect is one parsed contract clause.
type Effect struct {
	Kind       EffectKind
	Value      string // returns(value)
	Condition  string // implies (condition)
	Target     string // callsInPlace target parameter
	Invocation string // callsInPlace invocation kind
	Err        string
}

// Contract is a contract block of a callable.
type Contract struct {
	Source   []string
	Effects  []Effect
	Resolved bool
}

// ExprKind classifies expressions.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprRef
	ExprCall
)

// Expr is an expression inside a body or initializer.
type Expr struct {
	Kind   ExprKind
	Value  string
	Args   []*Expr
	Type   *TypeRef
	Target Decl
}

// Body is a statement block. Locals holds declarations nested in the block.
type Body struct {
	Statements []*Expr
	Result     *Expr
	Locals     []Decl
	Resolved   bool
}

// Import is an import directive of a file.
type Import struct {
	Path   string
	Alias  string
	State  RefState
	Target Decl
}

// Name returns the name the import introduces into file scope.
func (i *Import) Name() string {
	if i.Alias != "" {
		return i.Alias
	}
	if idx := strings.LastIndexByte(i.Path, '.'); idx >= 0 {
		return i.Path[idx+1:]
	}
	return i.Path
}

// Annotation is an annotation use.
type Annotation struct {
	Name string
	Args []string
	Type *TypeRef
}
