package phase

import "sync/atomic"

// Stamp is the mutable phase marker of a declaration.
//
// Writes happen only under the owning file's resolution lock, but reads are
// lock-free: the fast-path check before taking the lock may observe a stale
// value and must treat it as advisory.
type Stamp struct {
	v atomic.Uint32
}

// Load returns the current phase.
func (s *Stamp) Load() Phase {
	return Phase(s.v.Load())
}

// Advance raises the stamp to p. A stamp never moves backwards; Advance
// reports whether the stored value changed.
func (s *Stamp) Advance(p Phase) bool {
	for {
		cur := s.v.Load()
		if uint32(p) <= cur {
			return false
		}
		if s.v.CompareAndSwap(cur, uint32(p)) {
			return true
		}
	}
}

// AtLeast reports whether the stamp is at or past p.
func (s *Stamp) AtLeast(p Phase) bool {
	return s.Load() >= p
}
