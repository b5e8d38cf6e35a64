package diag

import (
	"cmp"
	"slices"

	"lazyres/internal/source"
)

type Bag struct {
	items []Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 100
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 16)),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasInternal reports whether any resolver invariant violation was recorded.
func (b *Bag) HasInternal() bool {
	for i := range b.items {
		if b.items[i].Code.Internal() {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag.
// Увеличивает max, если нужно вместить все элементы.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := len(b.items) + len(other.items); total > b.max {
		b.max = total
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, position, severity (desc) and code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		switch {
		case x.Primary != y.Primary:
			if x.Primary.Before(y.Primary) {
				return -1
			}
			return 1
		case x.Severity != y.Severity:
			return cmp.Compare(y.Severity, x.Severity)
		}
		return cmp.Compare(x.Code, y.Code)
	})
}

// Dedup drops repeats of the same code and message at the same span. The
// first occurrence wins, so notes of later copies are lost.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		at   source.Span
		msg  string
	}
	seen := make(map[key]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := key{d.Code, d.Primary, d.Message}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}

// Filter returns the diagnostics of bag at or above min, in a new bag.
func (b *Bag) Filter(min Severity) *Bag {
	out := NewBag(max(1, b.Len()))
	for _, d := range b.Items() {
		if d.Severity >= min {
			out.Add(d)
		}
	}
	return out
}
