package diag

import (
	"fmt"
	"sort"
	"strings"

	"lazyres/internal/source"
)

// FormatShort renders diagnostics one per line:
//
//	path:line:col: SEVERITY CODE: message
//
// sorted by position. Notes follow their diagnostic, indented.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	sorted := make([]Diagnostic, len(diags))
	copy(sorted, diags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Primary != sorted[j].Primary {
			return sorted[i].Primary.Before(sorted[j].Primary)
		}
		return sorted[i].Code < sorted[j].Code
	})

	var sb strings.Builder
	for _, d := range sorted {
		fmt.Fprintf(&sb, "%s: %s %s: %s\n", position(fs, d.Primary), d.Severity, d.Code.ID(), d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&sb, "  note: %s: %s\n", position(fs, n.Span), n.Msg)
		}
	}
	return sb.String()
}

func position(fs *source.FileSet, sp source.Span) string {
	if fs == nil {
		return sp.String()
	}
	return fs.Format(sp)
}
