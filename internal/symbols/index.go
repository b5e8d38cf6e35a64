package symbols

import (
	"fmt"
	"sync"

	"lazyres/internal/decl"
)

// Index is a Provider over a set of loaded files. Only non-local
// declarations are indexed. Safe for concurrent use.
type Index struct {
	mu          sync.RWMutex
	classifiers map[string]decl.Decl
	callables   map[string][]decl.Decl
	packages    map[string]int
}

// NewIndex indexes files. Duplicate classifiers are reported through the
// returned error; the first declaration wins.
func NewIndex(files ...*decl.File) (*Index, error) {
	idx := &Index{
		classifiers: make(map[string]decl.Decl),
		callables:   make(map[string][]decl.Decl),
		packages:    make(map[string]int),
	}
	var firstErr error
	for _, f := range files {
		if err := idx.Add(f); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return idx, firstErr
}

// Add indexes one more file.
func (idx *Index) Add(f *decl.File) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.packages[f.Package]++
	var dup error
	var visit func(prefix string, ds []decl.Decl)
	visit = func(prefix string, ds []decl.Decl) {
		for _, d := range ds {
			fq := Join(prefix, d.Head().Name)
			switch {
			case isClassifier(d):
				if prev, ok := idx.classifiers[fq]; ok && prev != d {
					if dup == nil {
						dup = fmt.Errorf("duplicate classifier %s", fq)
					}
					continue
				}
				idx.classifiers[fq] = d
				if c, ok := d.(*decl.Class); ok {
					visit(fq, c.Members)
				}
			case isIndexedCallable(d):
				idx.callables[fq] = append(idx.callables[fq], d)
			}
		}
	}
	visit(f.Package, f.Decls)
	return dup
}

func (idx *Index) Classifier(fq string) (decl.Decl, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	d, ok := idx.classifiers[fq]
	return d, ok
}

func (idx *Index) Callables(fq string) []decl.Decl {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.callables[fq]
}

func (idx *Index) HasPackage(pkg string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.packages[pkg] > 0 || pkg == BuiltinPackage
}
