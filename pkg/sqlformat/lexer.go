package sqlformat

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind int

const (
	Whitespace Kind = iota
	LineComment
	BlockComment
	String
	QuotedIdent
	Number
	Word
	Placeholder
	Operator
	Punct
)

func (k Kind) String() string {
	switch k {
	case Whitespace:
		return "whitespace"
	case LineComment:
		return "line_comment"
	case BlockComment:
		return "block_comment"
	case String:
		return "string"
	case QuotedIdent:
		return "quoted_ident"
	case Number:
		return "number"
	case Word:
		return "word"
	case Placeholder:
		return "placeholder"
	case Operator:
		return "operator"
	case Punct:
		return "punct"
	}
	return "unknown"
}

// Token is a lexical unit of SQL text. Text is src[Start:End].
type Token struct {
	Kind  Kind
	Text  string
	Start int
	End   int
}

// Significant reports whether the token carries content beyond layout.
func (t Token) Significant() bool {
	return t.Kind != Whitespace
}

// multi-character operators, longest first
var operators = []string{
	"->>", "#>>", "!~*", "<=>",
	"<>", "<=", ">=", "!=", "||", "::", "->", "=>", "<<", ">>",
	"@>", "<@", "~*", "!~", "#>", "&&", ":=",
}

// string literal prefixes such as E'..' or N'..'
var stringPrefixes = map[string]bool{"E": true, "N": true, "X": true, "B": true}

// Tokenize splits src into tokens covering every byte of the input. It never
// fails: unterminated literals and comments run to the end of the input.
func Tokenize(src string) []Token {
	var toks []Token
	for i := 0; i < len(src); {
		kind, end := scan(src, i)
		toks = append(toks, Token{Kind: kind, Text: src[i:end], Start: i, End: end})
		i = end
	}
	return toks
}

func scan(s string, i int) (Kind, int) {
	c := s[i]
	next := byteAt(s, i+1)

	switch {
	case isSpace(c):
		j := i
		for j < len(s) && isSpace(s[j]) {
			j++
		}
		return Whitespace, j

	case c == '-' && next == '-':
		j := strings.IndexByte(s[i:], '\n')
		if j < 0 {
			return LineComment, len(s)
		}
		end := i + j
		if s[end-1] == '\r' {
			end--
		}
		return LineComment, end

	case c == '/' && next == '*':
		j := strings.Index(s[i+2:], "*/")
		if j < 0 {
			return BlockComment, len(s)
		}
		return BlockComment, i + 2 + j + 2

	case c == '\'':
		return String, scanQuoted(s, i, '\'')

	case c == '"' || c == '`':
		return QuotedIdent, scanQuoted(s, i, c)

	case c == '$':
		if tag, ok := dollarTag(s, i); ok {
			j := strings.Index(s[i+len(tag):], tag)
			if j < 0 {
				return String, len(s)
			}
			return String, i + len(tag) + j + len(tag)
		}
		if isDigit(next) {
			j := i + 1
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			return Placeholder, j
		}
		return Operator, i + 1

	case isDigit(c) || (c == '.' && isDigit(next) && !attachesLeft(s, i)):
		return Number, scanNumber(s, i)

	case c == ':' && wordStartAt(s, i+1) > 0:
		return Placeholder, scanWord(s, i+1)

	case c == '@' && (next == '@' || wordStartAt(s, i+1) > 0):
		j := i + 1
		if next == '@' {
			j++
		}
		if wordStartAt(s, j) == 0 {
			return Operator, i + 1
		}
		return Word, scanWord(s, j)

	case wordStartAt(s, i) > 0:
		end := scanWord(s, i)
		if byteAt(s, end) == '\'' && stringPrefixes[strings.ToUpper(s[i:end])] {
			return String, scanQuoted(s, end, '\'')
		}
		return Word, end

	case c == '?':
		return Placeholder, i + 1

	case strings.IndexByte("(),;.[]", c) >= 0:
		return Punct, i + 1
	}

	for _, op := range operators {
		if strings.HasPrefix(s[i:], op) {
			return Operator, i + len(op)
		}
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return Operator, i + size
}

// scanQuoted returns the end offset of a literal opened by q at i. Doubled
// quotes escape; inside single-quoted strings so does a backslash.
func scanQuoted(s string, i int, q byte) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case q:
			if byteAt(s, j+1) == q {
				j++
				continue
			}
			return j + 1
		case '\\':
			if q == '\'' {
				j++
			}
		}
	}
	return len(s)
}

// dollarTag recognizes $$ and $tag$ openers.
func dollarTag(s string, i int) (string, bool) {
	j := i + 1
	for j < len(s) {
		c := s[j]
		if c == '$' {
			return s[i : j+1], true
		}
		if !(c == '_' || isLetter(c) || (j > i+1 && isDigit(c))) {
			return "", false
		}
		j++
	}
	return "", false
}

func scanNumber(s string, i int) int {
	j := i
	if s[j] == '0' && (byteAt(s, j+1) == 'x' || byteAt(s, j+1) == 'X') && isHex(byteAt(s, j+2)) {
		j += 2
		for j < len(s) && isHex(s[j]) {
			j++
		}
		return j
	}
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if byteAt(s, j) == '.' && isDigit(byteAt(s, j+1)) {
		j++
		for j < len(s) && isDigit(s[j]) {
			j++
		}
	}
	if e := byteAt(s, j); e == 'e' || e == 'E' {
		k := j + 1
		if sign := byteAt(s, k); sign == '+' || sign == '-' {
			k++
		}
		if isDigit(byteAt(s, k)) {
			j = k
			for j < len(s) && isDigit(s[j]) {
				j++
			}
		}
	}
	return j
}

func scanWord(s string, i int) int {
	j := i
	for j < len(s) {
		r, size := utf8.DecodeRuneInString(s[j:])
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			j += size
			continue
		}
		break
	}
	return j
}

// wordStartAt returns the byte size of the rune at i if it can start a word.
func wordStartAt(s string, i int) int {
	if i < 0 || i >= len(s) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(s[i:])
	if r == '_' || unicode.IsLetter(r) {
		return size
	}
	return 0
}

// attachesLeft reports whether the byte before i binds to a following '.',
// as in t.1 or f(x).y.
func attachesLeft(s string, i int) bool {
	p := byteAt(s, i-1)
	return p == '_' || p == ')' || p == ']' || p == '"' || p == '`' || isLetter(p) || isDigit(p) || p >= utf8.RuneSelf
}

func byteAt(s string, i int) byte {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isHex(c byte) bool    { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
