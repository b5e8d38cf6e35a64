package algo

import (
	"errors"
	"fmt"
	"strings"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
	"lazyres/internal/symbols"
)

// typeText is a parsed type reference text.
type typeText struct {
	name     string
	args     []string
	nullable bool
	function bool
}

var errEmptyType = errors.New("empty type reference")

func parseTypeText(s string) (typeText, error) {
	var tt typeText
	s = strings.TrimSpace(s)
	if s == "" {
		return tt, errEmptyType
	}
	if strings.HasSuffix(s, "?") {
		tt.nullable = true
		s = strings.TrimSpace(s[:len(s)-1])
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && matchingParen(s) == len(s)-1 {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if topLevelIndex(s, "->") >= 0 {
		tt.function = true
		return tt, nil
	}
	lt := strings.IndexByte(s, '<')
	if lt < 0 {
		tt.name = s
	} else {
		if !strings.HasSuffix(s, ">") {
			return tt, fmt.Errorf("malformed type arguments in %q", s)
		}
		tt.name = strings.TrimSpace(s[:lt])
		for _, a := range splitTopLevel(s[lt+1 : len(s)-1]) {
			a = strings.TrimSpace(a)
			if a == "" {
				return tt, fmt.Errorf("empty type argument in %q", s)
			}
			tt.args = append(tt.args, a)
		}
	}
	if !isQualifiedIdent(tt.name) {
		return tt, fmt.Errorf("malformed type name %q", tt.name)
	}
	return tt, nil
}

func matchingParen(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func topLevelIndex(s, sub string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '<':
			depth++
		case ')':
			depth--
		case '>':
			if i > 0 && s[i-1] == '-' {
				continue
			}
			depth--
		}
		if depth == 0 && strings.HasPrefix(s[i:], sub) {
			return i
		}
	}
	return -1
}

func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '<':
			depth++
		case ')', '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

func isQualifiedIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f {
				continue
			}
			if i > 0 && r >= '0' && r <= '9' {
				continue
			}
			return false
		}
	}
	return true
}

// resolveType binds an unresolved reference in the scope of site. With
// header set, the members of site itself are not visible (supertypes and
// type parameter bounds of a class).
func (e *Env) resolveType(site decl.Decl, ref *decl.TypeRef, header bool) {
	if ref == nil || ref.State != decl.RefUnresolved {
		return
	}
	tt, err := parseTypeText(ref.Text)
	if err != nil {
		e.failType(site, ref, err.Error())
		return
	}
	ref.Nullable = tt.nullable
	if tt.function {
		ref.Resolve(symbols.BuiltinPackage+".Function", nil)
		return
	}
	fq, target, ok := e.lookupClassifier(site, tt.name, header)
	if !ok {
		e.failType(site, ref, "unresolved type "+tt.name)
		return
	}
	ref.Args = ref.Args[:0]
	for _, a := range tt.args {
		arg := decl.Unresolved(a)
		if a == "*" {
			arg.Resolve("*", nil)
		} else {
			e.resolveType(site, arg, header)
		}
		ref.Args = append(ref.Args, arg)
	}
	ref.Resolve(fq, target)
}

func (e *Env) failType(site decl.Decl, ref *decl.TypeRef, reason string) {
	ref.Fail(reason)
	e.report(diag.SemaUnresolvedType, site.Head().Span, reason)
}

func (e *Env) lookupClassifier(site decl.Decl, name string, header bool) (string, decl.Decl, bool) {
	first, rest, dotted := strings.Cut(name, ".")
	if !dotted {
		return e.lookupShortClassifier(site, name, header)
	}
	if e.Symbols != nil {
		if d, ok := e.Symbols.Classifier(name); ok {
			return name, d, true
		}
	}
	fq, target, ok := e.lookupShortClassifier(site, first, header)
	if !ok {
		return "", nil, false
	}
	for _, seg := range strings.Split(rest, ".") {
		c, isClass := target.(*decl.Class)
		if !isClass {
			return "", nil, false
		}
		m := findClassifier(c.Members, seg)
		if m == nil {
			return "", nil, false
		}
		fq, target = fq+"."+seg, m
	}
	return fq, target, true
}

func (e *Env) lookupShortClassifier(site decl.Decl, name string, header bool) (string, decl.Decl, bool) {
	for cur := site; cur != nil; cur = decl.Parent(cur) {
		for _, tp := range typeParamsOf(cur) {
			if tp.Name == name {
				return name, tp, true
			}
		}
		switch c := cur.(type) {
		case *decl.Class:
			if header && cur == site {
				continue
			}
			if m := findClassifier(c.Members, name); m != nil {
				return decl.QualifiedName(m), m, true
			}
		case *decl.File:
			if m := findClassifier(c.Decls, name); m != nil {
				return decl.QualifiedName(m), m, true
			}
			return e.lookupFileClassifier(c, name)
		}
		if m := findClassifier(decl.Locals(cur), name); m != nil {
			return decl.QualifiedName(m), m, true
		}
	}
	return "", nil, false
}

// lookupFileClassifier resolves name through imports, the file's package
// and builtins.
func (e *Env) lookupFileClassifier(f *decl.File, name string) (string, decl.Decl, bool) {
	key := scopeKey{file: f, name: name, kind: kindClassifier}
	if e.Scopes != nil {
		if h, ok := e.Scopes.get(key); ok {
			return h.fq, h.target, h.ok
		}
	}
	h := e.fileClassifier(f, name)
	if e.Scopes != nil {
		e.Scopes.put(key, h)
	}
	return h.fq, h.target, h.ok
}

func (e *Env) fileClassifier(f *decl.File, name string) scopeHit {
	for _, imp := range f.Imports {
		if strings.HasSuffix(imp.Path, ".*") || imp.Name() != name {
			continue
		}
		if imp.Target != nil && isClassifier(imp.Target) {
			return scopeHit{fq: imp.Path, target: imp.Target, ok: true}
		}
		if imp.State == decl.RefUnresolved && e.Symbols != nil {
			if d, ok := e.Symbols.Classifier(imp.Path); ok {
				return scopeHit{fq: imp.Path, target: d, ok: true}
			}
		}
	}
	if e.Symbols != nil {
		fq := symbols.Join(f.Package, name)
		if d, ok := e.Symbols.Classifier(fq); ok {
			return scopeHit{fq: fq, target: d, ok: true}
		}
		for _, imp := range f.Imports {
			prefix, star := strings.CutSuffix(imp.Path, ".*")
			if !star {
				continue
			}
			fq := prefix + "." + name
			if d, ok := e.Symbols.Classifier(fq); ok {
				return scopeHit{fq: fq, target: d, ok: true}
			}
		}
	}
	if fq, _, ok := symbols.Builtin(name); ok {
		return scopeHit{fq: fq, ok: true}
	}
	return scopeHit{}
}

func typeParamsOf(d decl.Decl) []*decl.TypeParameter {
	switch d := d.(type) {
	case *decl.Class:
		return d.TypeParams
	case *decl.Function:
		return d.TypeParams
	case *decl.Property:
		return d.TypeParams
	case *decl.TypeAlias:
		return d.TypeParams
	}
	return nil
}

func paramsOf(d decl.Decl) []*decl.ValueParameter {
	switch d := d.(type) {
	case *decl.Function:
		return d.Params
	case *decl.Constructor:
		return d.Params
	case *decl.Accessor:
		if d.Param != nil {
			return []*decl.ValueParameter{d.Param}
		}
	case *decl.Class:
		for _, m := range d.Members {
			if ctor, ok := m.(*decl.Constructor); ok && ctor.Primary {
				return ctor.Params
			}
		}
	}
	return nil
}

func isClassifier(d decl.Decl) bool {
	switch d := d.(type) {
	case *decl.Class:
		return !d.IsAnonymous()
	case *decl.TypeAlias:
		return true
	}
	return false
}

func findClassifier(ds []decl.Decl, name string) decl.Decl {
	for _, d := range ds {
		if isClassifier(d) && d.Head().Name == name {
			return d
		}
	}
	return nil
}

// lookupValue resolves a reference (call == false) or a callee (call ==
// true) in the scope of site.
func (e *Env) lookupValue(site decl.Decl, name string, call bool) (decl.Decl, bool) {
	if first, member, dotted := strings.Cut(name, "."); dotted {
		_, owner, ok := e.lookupClassifier(site, first, false)
		if !ok {
			return nil, false
		}
		for {
			c, isClass := owner.(*decl.Class)
			if !isClass {
				return nil, false
			}
			seg, rest, more := strings.Cut(member, ".")
			if !more {
				d := pickValue(c.Members, seg, call)
				return d, d != nil
			}
			owner = findClassifier(c.Members, seg)
			member = rest
		}
	}
	for cur := site; cur != nil; cur = decl.Parent(cur) {
		if !call {
			for _, p := range paramsOf(cur) {
				if p.Name == name {
					return p, true
				}
			}
		}
		if d := pickValue(decl.Locals(cur), name, call); d != nil {
			return d, true
		}
		switch c := cur.(type) {
		case *decl.Class:
			if d := pickValue(c.Members, name, call); d != nil {
				return d, true
			}
		case *decl.File:
			if d := pickValue(c.Decls, name, call); d != nil {
				return d, true
			}
			return e.lookupFileValue(c, name, call)
		}
	}
	return nil, false
}

func (e *Env) lookupFileValue(f *decl.File, name string, call bool) (decl.Decl, bool) {
	key := scopeKey{file: f, name: name, call: call, kind: kindValue}
	if e.Scopes != nil {
		if h, ok := e.Scopes.get(key); ok {
			return h.target, h.ok
		}
	}
	h := e.fileValue(f, name, call)
	if e.Scopes != nil {
		e.Scopes.put(key, h)
	}
	return h.target, h.ok
}

func (e *Env) fileValue(f *decl.File, name string, call bool) scopeHit {
	if e.Symbols == nil {
		return scopeHit{}
	}
	try := func(fq string) (decl.Decl, bool) {
		short := fq[strings.LastIndexByte(fq, '.')+1:]
		if d := pickValue(e.Symbols.Callables(fq), short, call); d != nil {
			return d, true
		}
		if c, ok := e.Symbols.Classifier(fq); ok {
			if d := pickValue([]decl.Decl{c}, c.Head().Name, call); d != nil {
				return d, true
			}
		}
		return nil, false
	}
	for _, imp := range f.Imports {
		if strings.HasSuffix(imp.Path, ".*") || imp.Name() != name {
			continue
		}
		if d, ok := try(imp.Path); ok {
			return scopeHit{fq: imp.Path, target: d, ok: true}
		}
	}
	if d, ok := try(symbols.Join(f.Package, name)); ok {
		return scopeHit{target: d, ok: true}
	}
	for _, imp := range f.Imports {
		prefix, star := strings.CutSuffix(imp.Path, ".*")
		if !star {
			continue
		}
		if d, ok := try(prefix + "." + name); ok {
			return scopeHit{target: d, ok: true}
		}
	}
	return scopeHit{}
}

// pickValue selects the first declaration usable as a value (or callee)
// named name.
func pickValue(ds []decl.Decl, name string, call bool) decl.Decl {
	for _, d := range ds {
		if d.Head().Name != name {
			continue
		}
		switch d := d.(type) {
		case *decl.Function:
			if call {
				return d
			}
		case *decl.Class:
			if d.IsAnonymous() {
				continue
			}
			if call && d.ClassKind != decl.ClassInterface && d.ClassKind != decl.ClassObject {
				return d
			}
			if !call && (d.ClassKind == decl.ClassObject || d.ClassKind == decl.ClassEnum) {
				return d
			}
		case *decl.Property, *decl.Field, *decl.EnumEntry:
			if !call {
				return d
			}
		}
	}
	return nil
}
