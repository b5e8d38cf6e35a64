package diag

import (
	"fmt"
	"strings"
)

// Severity orders diagnostics; filters keep everything at or above a level.
type Severity uint8

const (
	SevInfo Severity = iota // timings, cycle notes and other non-problems
	SevWarning
	SevError
)

var severityNames = [...]string{
	SevInfo:    "INFO",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the names String produces in any case, plus
// "warn".
func ParseSeverity(s string) (Severity, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "WARN" {
		return SevWarning, nil
	}
	for i, name := range severityNames {
		if name == v {
			return Severity(i), nil
		}
	}
	return SevInfo, fmt.Errorf("invalid severity %q (expected info|warning|error)", s)
}
