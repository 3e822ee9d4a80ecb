// Package chunker cuts normalized SQL into bounded pieces that can be
// explained independently.
package chunker

import (
	"strings"
	"unicode/utf8"

	"sql-explainer/pkg/models"
	"sql-explainer/pkg/sqlformat"
)

// DefaultMaxChunkSize is used when Split is given a non-positive limit.
const DefaultMaxChunkSize = 2000

type level int

const (
	statements level = iota
	lines
	tokens
)

// span is an inclusive range of significant tokens.
type span struct{ first, last int }

type splitter struct {
	text string
	sig  []sqlformat.Token
	max  int

	// rune offsets of each significant token's start and end
	startRune, endRune []int

	cur    span
	open   bool
	chunks []models.Chunk
}

// Split returns the chunks of text in order. Each chunk is at most
// maxChunkSize runes unless it consists of a single longer token. Boundaries
// are preferred at statement ends, then line ends, then between tokens; whitespace
// between two chunks belongs to neither. Empty or blank text yields a single
// empty chunk.
func Split(text string, maxChunkSize int) []models.Chunk {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}

	s := &splitter{text: text, max: maxChunkSize}
	for _, t := range sqlformat.Tokenize(text) {
		if t.Significant() {
			s.sig = append(s.sig, t)
		}
	}
	if len(s.sig) == 0 {
		return []models.Chunk{{Index: 0}}
	}
	s.countRunes()

	for _, p := range s.pieces(span{0, len(s.sig) - 1}, statements) {
		s.add(p, statements)
	}
	s.flush()
	return s.chunks
}

func (s *splitter) countRunes() {
	s.startRune = make([]int, len(s.sig))
	s.endRune = make([]int, len(s.sig))
	n, prev := 0, 0
	for i, t := range s.sig {
		n += utf8.RuneCountInString(s.text[prev:t.Start])
		s.startRune[i] = n
		n += utf8.RuneCountInString(t.Text)
		s.endRune[i] = n
		prev = t.End
	}
}

func (s *splitter) size(sp span) int {
	return s.endRune[sp.last] - s.startRune[sp.first]
}

func (s *splitter) add(p span, lvl level) {
	if s.open {
		if grown := (span{s.cur.first, p.last}); s.size(grown) <= s.max {
			s.cur = grown
			return
		}
		s.flush()
	}
	if s.size(p) <= s.max || lvl == tokens {
		s.cur, s.open = p, true
		return
	}
	for _, sub := range s.pieces(p, lvl+1) {
		s.add(sub, lvl+1)
	}
}

func (s *splitter) flush() {
	if !s.open {
		return
	}
	start, end := s.sig[s.cur.first].Start, s.sig[s.cur.last].End
	s.chunks = append(s.chunks, models.Chunk{
		Index: len(s.chunks),
		Start: start,
		End:   end,
		Text:  s.text[start:end],
	})
	s.open = false
}

// pieces cuts sp at the boundaries of the given level.
func (s *splitter) pieces(sp span, lvl level) []span {
	var out []span
	first := sp.first
	for i := sp.first; i <= sp.last; i++ {
		if i == sp.last || s.boundaryAfter(i, lvl) {
			out = append(out, span{first, i})
			first = i + 1
		}
	}
	return out
}

func (s *splitter) boundaryAfter(i int, lvl level) bool {
	t := s.sig[i]
	switch lvl {
	case statements:
		return t.Kind == sqlformat.Punct && t.Text == ";"
	case lines:
		if t.Kind == sqlformat.LineComment {
			return true
		}
		return strings.ContainsRune(s.text[t.End:s.sig[i+1].Start], '\n')
	}
	return true
}
