package lint

import (
	"fmt"
	"strconv"
	"strings"
)

// Severity is the ordinal severity of a message or a configured rule.
type Severity int

// Severity levels, numbered as in engine rule configuration.
const (
	// SeverityOff disables a rule. Messages never carry it.
	SeverityOff Severity = iota
	// SeverityWarning reports a problem without failing the run.
	SeverityWarning
	// SeverityError reports a problem that fails gating stages.
	SeverityError
)

// String returns the string representation of a Severity.
func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity converts a rule configuration value to a Severity.
// Accepted forms are 0/1/2 (as int, float64 or numeric string),
// "off", "warn", "warning" and "error". An array value is read from
// its first element, as in `["error", {...}]`.
func ParseSeverity(v any) (Severity, bool) {
	switch s := v.(type) {
	case Severity:
		return s, s >= SeverityOff && s <= SeverityError
	case int:
		return severityFromInt(s)
	case int64:
		return severityFromInt(int(s))
	case float64:
		if s != float64(int(s)) {
			return SeverityOff, false
		}
		return severityFromInt(int(s))
	case string:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "off":
			return SeverityOff, true
		case "warn", "warning":
			return SeverityWarning, true
		case "error":
			return SeverityError, true
		}
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return severityFromInt(n)
		}
		return SeverityOff, false
	case []any:
		if len(s) == 0 {
			return SeverityOff, false
		}
		return ParseSeverity(s[0])
	case []string:
		if len(s) == 0 {
			return SeverityOff, false
		}
		return ParseSeverity(s[0])
	default:
		return SeverityOff, false
	}
}

func severityFromInt(n int) (Severity, bool) {
	if n < int(SeverityOff) || n > int(SeverityError) {
		return SeverityOff, false
	}
	return Severity(n), true
}
