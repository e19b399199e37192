// Package lint defines the vocabulary shared by every stage of a lint
// pipeline: messages, per-file results, aggregated totals and rule metadata.
//
// # Classification
//
// A Message is classified by its severity, its fatal flag and whether it
// carries an automatic fix:
//
//	lint.IsError(m)          // severity > 1
//	lint.IsWarning(m)        // severity == 1
//	lint.IsFixableError(m)   // error with a fix
//	lint.IsFixableWarning(m) // warning with a fix
//	lint.IsFatalError(m)     // error flagged fatal (parse failures)
//
// # Filtering
//
// FilterResult produces a copy of a Result that keeps only the messages
// accepted by a Filter. The five counts are recomputed from the surviving
// messages, so they always agree with CountMessages.
//
//	quiet := lint.FilterResult(result, lint.FilterFor(lint.IsError))
package lint
