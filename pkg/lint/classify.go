package lint

// Predicate is a pure decision over a single message.
type Predicate func(m Message) bool

// IsError reports whether m is an error.
func IsError(m Message) bool {
	return m.Severity > SeverityWarning
}

// IsWarning reports whether m is a warning.
func IsWarning(m Message) bool {
	return m.Severity == SeverityWarning
}

// IsFixableError reports whether m is an error with an automatic fix.
func IsFixableError(m Message) bool {
	return IsError(m) && m.HasFix()
}

// IsFixableWarning reports whether m is a warning with an automatic fix.
func IsFixableWarning(m Message) bool {
	return IsWarning(m) && m.HasFix()
}

// IsFatalError reports whether m is an error the engine flagged fatal.
func IsFatalError(m Message) bool {
	return IsError(m) && m.Fatal
}

// CountMessages derives the five counters from messages.
func CountMessages(messages []Message) Counts {
	var c Counts
	for _, m := range messages {
		if IsError(m) {
			c.ErrorCount++
		}
		if IsWarning(m) {
			c.WarningCount++
		}
		if IsFixableError(m) {
			c.FixableErrorCount++
		}
		if IsFixableWarning(m) {
			c.FixableWarningCount++
		}
		if IsFatalError(m) {
			c.FatalErrorCount++
		}
	}
	return c
}
