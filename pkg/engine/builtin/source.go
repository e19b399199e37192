package builtin

import (
	"strings"
	"unicode/utf8"
)

// source is a text being linted with its line index.
type source struct {
	text       string
	lineStarts []int
}

func newSource(text string) *source {
	s := &source{text: text}
	s.lineStarts = append(s.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}
	return s
}

// lines returns the number of lines.
func (s *source) lines() int {
	return len(s.lineStarts)
}

// line returns the text of line n (1-based) without its terminator.
func (s *source) line(n int) string {
	start := s.lineStarts[n-1]
	end := len(s.text)
	if n < len(s.lineStarts) {
		end = s.lineStarts[n] - 1
	}
	return strings.TrimSuffix(s.text[start:end], "\r")
}

// position converts a byte offset into a 1-based line and column.
func (s *source) position(offset int) (int, int) {
	lo, hi := 0, len(s.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	col := utf8.RuneCountInString(s.text[s.lineStarts[lo]:offset]) + 1
	return lo + 1, col
}

// offset converts a 1-based line and byte column into a byte offset.
func (s *source) offset(line, byteCol int) int {
	return s.lineStarts[line-1] + byteCol
}
