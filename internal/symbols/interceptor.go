package symbols

import (
	"lazyres/internal/decl"
)

// Interceptor overlays the symbols of an on-air element on top of another
// provider. On-air declarations are built outside their real tree location,
// so the regular index does not know them; while resolving such an element
// the interceptor answers for its own classifiers and callables first.
type Interceptor struct {
	base        Provider
	classifiers map[string]decl.Decl
	callables   map[string][]decl.Decl
}

// NewInterceptor indexes element (and, for classes, its members) under the
// qualified name of the container it is attached to, or of file when it
// has none.
func NewInterceptor(base Provider, file *decl.File, element decl.Decl) *Interceptor {
	ic := &Interceptor{
		base:        base,
		classifiers: make(map[string]decl.Decl),
		callables:   make(map[string][]decl.Decl),
	}
	prefix := ""
	if owner := decl.Parent(element); owner != nil {
		prefix = decl.QualifiedName(owner)
	} else if file != nil {
		prefix = file.Package
	}
	var visit func(prefix string, d decl.Decl)
	visit = func(prefix string, d decl.Decl) {
		fq := Join(prefix, d.Head().Name)
		switch {
		case isClassifier(d):
			ic.classifiers[fq] = d
			for _, m := range decl.Children(d) {
				visit(fq, m)
			}
		case isIndexedCallable(d):
			ic.callables[fq] = append(ic.callables[fq], d)
		}
	}
	visit(prefix, element)
	return ic
}

func (ic *Interceptor) Classifier(fq string) (decl.Decl, bool) {
	if d, ok := ic.classifiers[fq]; ok {
		return d, true
	}
	if ic.base == nil {
		return nil, false
	}
	return ic.base.Classifier(fq)
}

func (ic *Interceptor) Callables(fq string) []decl.Decl {
	if ds, ok := ic.callables[fq]; ok {
		return ds
	}
	if ic.base == nil {
		return nil
	}
	return ic.base.Callables(fq)
}

func (ic *Interceptor) HasPackage(pkg string) bool {
	return ic.base != nil && ic.base.HasPackage(pkg)
}
