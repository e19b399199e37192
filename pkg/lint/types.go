package lint

import "encoding/json"

// =============================================================================
// Messages
// =============================================================================

// Fix is an automatic correction: replace the byte range [Range[0], Range[1])
// of the linted text with Text.
type Fix struct {
	Range [2]int `json:"range"`
	Text  string `json:"text"`
}

// Suggestion is a correction offered to editors but never applied by fix mode.
type Suggestion struct {
	Desc string `json:"desc"`
	Fix  Fix    `json:"fix"`
}

// Message is a single problem reported for a file.
type Message struct {
	RuleID      string       `json:"ruleId"`
	Severity    Severity     `json:"severity"`
	Fatal       bool         `json:"fatal,omitempty"`
	Message     string       `json:"message"`
	Line        int          `json:"line,omitempty"`
	Column      int          `json:"column,omitempty"`
	EndLine     int          `json:"endLine,omitempty"`
	EndColumn   int          `json:"endColumn,omitempty"`
	Fix         *Fix         `json:"fix,omitempty"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// MarshalJSON writes an empty RuleID as null. Parse errors and adapter
// messages belong to no rule.
func (m Message) MarshalJSON() ([]byte, error) {
	type plain Message
	var ruleID *string
	if m.RuleID != "" {
		ruleID = &m.RuleID
	}
	return json.Marshal(struct {
		RuleID *string `json:"ruleId"`
		plain
	}{RuleID: ruleID, plain: plain(m)})
}

// HasFix reports whether the message carries an automatic correction.
func (m Message) HasFix() bool {
	return m.Fix != nil
}

// =============================================================================
// Results
// =============================================================================

// Counts holds the five message counters tracked for a result or a result set.
type Counts struct {
	ErrorCount          int `json:"errorCount"`
	FatalErrorCount     int `json:"fatalErrorCount"`
	WarningCount        int `json:"warningCount"`
	FixableErrorCount   int `json:"fixableErrorCount"`
	FixableWarningCount int `json:"fixableWarningCount"`
}

// Add accumulates other into c.
func (c *Counts) Add(other Counts) {
	c.ErrorCount += other.ErrorCount
	c.FatalErrorCount += other.FatalErrorCount
	c.WarningCount += other.WarningCount
	c.FixableErrorCount += other.FixableErrorCount
	c.FixableWarningCount += other.FixableWarningCount
}

// Problems returns the number of errors and warnings.
func (c Counts) Problems() int {
	return c.ErrorCount + c.WarningCount
}

// Result is the lint outcome for one file.
//
// Output is set by the engine when fix mode produced corrected text.
// Fixed is set by the lint stage, not the engine, once Output has been
// copied into the file's contents.
type Result struct {
	FilePath string    `json:"filePath"`
	Messages []Message `json:"messages"`
	Counts
	Source *string `json:"source,omitempty"`
	Output *string `json:"output,omitempty"`
	Fixed  bool    `json:"fixed,omitempty"`
}

// NewResult builds a result whose counts are derived from messages.
func NewResult(filePath string, messages []Message) *Result {
	if messages == nil {
		messages = []Message{}
	}
	return &Result{
		FilePath: filePath,
		Messages: messages,
		Counts:   CountMessages(messages),
	}
}

// HasOutput reports whether the engine produced corrected text.
func (r *Result) HasOutput() bool {
	return r != nil && r.Output != nil
}

// =============================================================================
// Rule metadata
// =============================================================================

// RuleDocs describes where a rule is documented.
type RuleDocs struct {
	Description string `json:"description,omitempty"`
	Recommended bool   `json:"recommended,omitempty"`
	URL         string `json:"url,omitempty"`
}

// RuleMeta is the metadata an engine exposes for a rule.
type RuleMeta struct {
	Type           string   `json:"type,omitempty"`
	Docs           RuleDocs `json:"docs"`
	Fixable        string   `json:"fixable,omitempty"`
	HasSuggestions bool     `json:"hasSuggestions,omitempty"`
	Deprecated     bool     `json:"deprecated,omitempty"`
}

// RulesMeta maps rule IDs to their metadata.
type RulesMeta map[string]RuleMeta
