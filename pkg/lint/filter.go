package lint

// Filter decides whether a message survives filtering. It receives the
// message, its index, the full original message list and the result that
// owns them.
type Filter func(m Message, index int, messages []Message, result *Result) bool

// FilterFor adapts a Predicate into a Filter.
func FilterFor(p Predicate) Filter {
	return func(m Message, _ int, _ []Message, _ *Result) bool {
		return p(m)
	}
}

// FilterResult returns a copy of r holding only the messages accepted by keep,
// with all five counts recomputed. r is not modified.
func FilterResult(r *Result, keep Filter) *Result {
	out := *r
	out.Messages = make([]Message, 0, len(r.Messages))
	for i, m := range r.Messages {
		if keep(m, i, r.Messages, r) {
			out.Messages = append(out.Messages, m)
		}
	}
	out.Counts = CountMessages(out.Messages)
	return &out
}
