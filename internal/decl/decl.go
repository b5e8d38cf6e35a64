package decl

import (
	"lazyres/internal/phase"
	"lazyres/internal/source"
)

// Kind identifies the variant of a declaration.
type Kind uint8

const (
	KindFile Kind = iota
	KindClass
	KindFunction
	KindProperty
	KindAccessor
	KindConstructor
	KindTypeAlias
	KindEnumEntry
	KindField
	KindAnonymousInitializer
	KindValueParameter
	KindTypeParameter
)

var kindNames = [...]string{
	KindFile:                 "file",
	KindClass:                "class",
	KindFunction:             "function",
	KindProperty:             "property",
	KindAccessor:             "accessor",
	KindConstructor:          "constructor",
	KindTypeAlias:            "typealias",
	KindEnumEntry:            "enum entry",
	KindField:                "field",
	KindAnonymousInitializer: "init",
	KindValueParameter:       "parameter",
	KindTypeParameter:        "type parameter",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Decl is a node of the declaration tree.
type Decl interface {
	Kind() Kind
	Head() *Header
	decl()
}

// Header holds the data every declaration carries.
type Header struct {
	Name        string
	Span        source.Span
	Modifiers   Modifiers
	Annotations []*Annotation

	parent Decl
	stamp  phase.Stamp
}

func (h *Header) Head() *Header { return h }
func (*Header) decl()           {}

// Phase returns the declaration's phase stamp.
func (h *Header) Phase() phase.Phase { return h.stamp.Load() }

// AdvancePhase raises the stamp; it never lowers it.
func (h *Header) AdvancePhase(p phase.Phase) bool { return h.stamp.Advance(p) }

// Parent returns the structural owner, nil for files.
func (h *Header) Parent() Decl { return h.parent }

// File is the root of a tree.
type File struct {
	Header
	Package string
	Imports []*Import
	Decls   []Decl
}

func (*File) Kind() Kind { return KindFile }

// ClassKind distinguishes class-like declarations.
type ClassKind uint8

const (
	ClassRegular ClassKind = iota
	ClassInterface
	ClassObject
	ClassEnum
	ClassAnnotation
	ClassAnonymousObject
)

func (k ClassKind) String() string {
	switch k {
	case ClassRegular:
		return "class"
	case ClassInterface:
		return "interface"
	case ClassObject:
		return "object"
	case ClassEnum:
		return "enum class"
	case ClassAnnotation:
		return "annotation class"
	case ClassAnonymousObject:
		return "anonymous object"
	}
	return "class?"
}

// Class is a class-like container.
//
// Besides the main stamp a class has a header stamp for its own data
// (supertypes, type parameters, status). The header advances whenever the
// class lies on a designation path; the main stamp only advances once every
// member reached the phase.
type Class struct {
	Header
	ClassKind  ClassKind
	TypeParams []*TypeParameter
	SuperTypes []*TypeRef
	Members    []Decl
	Status     Status

	header phase.Stamp
}

func (*Class) Kind() Kind { return KindClass }

// HeaderPhase returns the phase of the class's own data.
func (c *Class) HeaderPhase() phase.Phase {
	return phase.Max(c.header.Load(), c.stamp.Load())
}

// AdvanceHeaderPhase raises the header stamp.
func (c *Class) AdvanceHeaderPhase(p phase.Phase) bool { return c.header.Advance(p) }

// IsAnonymous reports whether the class is an anonymous object.
func (c *Class) IsAnonymous() bool { return c.ClassKind == ClassAnonymousObject }

// Function is a named function.
type Function struct {
	Header
	TypeParams []*TypeParameter
	Receiver   *TypeRef
	Params     []*ValueParameter
	ReturnType *TypeRef
	Status     Status
	Contract   *Contract
	Body       *Body
}

func (*Function) Kind() Kind { return KindFunction }

// Property is a val/var with optional accessors.
type Property struct {
	Header
	Mutable     bool
	TypeParams  []*TypeParameter
	Receiver    *TypeRef
	ReturnType  *TypeRef
	Initializer *Expr
	Getter      *Accessor
	Setter      *Accessor
	Status      Status
}

func (*Property) Kind() Kind { return KindProperty }

// Accessor is a property getter or setter. Its phase is tracked through the
// owning property.
type Accessor struct {
	Header
	Setter     bool
	Param      *ValueParameter
	ReturnType *TypeRef
	Status     Status
	Contract   *Contract
	Body       *Body
}

func (*Accessor) Kind() Kind { return KindAccessor }

// Constructor is a primary or secondary constructor.
type Constructor struct {
	Header
	Primary    bool
	Params     []*ValueParameter
	ReturnType *TypeRef
	Status     Status
	Contract   *Contract
	Body       *Body
}

func (*Constructor) Kind() Kind { return KindConstructor }

// TypeAlias names another type.
type TypeAlias struct {
	Header
	TypeParams []*TypeParameter
	Expanded   *TypeRef
	Status     Status
}

func (*TypeAlias) Kind() Kind { return KindTypeAlias }

// EnumEntry is an entry of an enum class. Its type is the enum class.
type EnumEntry struct {
	Header
	ReturnType *TypeRef
	Status     Status
}

func (*EnumEntry) Kind() Kind { return KindEnumEntry }

// Field is a backing field without accessors.
type Field struct {
	Header
	ReturnType  *TypeRef
	Initializer *Expr
	Status      Status
}

func (*Field) Kind() Kind { return KindField }

// AnonymousInitializer is an init block of a class.
type AnonymousInitializer struct {
	Header
	Body *Body
}

func (*AnonymousInitializer) Kind() Kind { return KindAnonymousInitializer }

// ValueParameter is a parameter of a function, constructor or setter.
type ValueParameter struct {
	Header
	Type    *TypeRef
	Default *Expr
}

func (*ValueParameter) Kind() Kind { return KindValueParameter }

// TypeParameter is a generic parameter.
type TypeParameter struct {
	Header
	Bounds []*TypeRef
}

func (*TypeParameter) Kind() Kind { return KindTypeParameter }
