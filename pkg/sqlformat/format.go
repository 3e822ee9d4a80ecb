// Package sqlformat normalizes SQL text: keywords are uppercased and the
// statement is re-indented clause by clause. Token order and literal values
// are never changed, and Normalize(Normalize(x)) == Normalize(x).
package sqlformat

import "strings"

const indentWidth = 2

// frame is the layout context of a statement or parenthesized group.
type frame struct {
	indent  int
	clauses bool // clause keywords break lines (statement level and sub-queries)
	clause  string
	between bool // a BETWEEN is waiting for its AND
}

type formatter struct {
	out       strings.Builder
	frames    []frame
	prev      *Token
	prevKw    bool
	prevUpper string
	unary     bool
	newline   bool
	stmtEnd   bool
}

// Normalize reformats raw SQL. It never fails; input it cannot make sense of
// is passed through token by token.
func Normalize(raw string) string {
	var sig []Token
	for _, t := range Tokenize(raw) {
		if t.Significant() {
			sig = append(sig, t)
		}
	}

	f := &formatter{frames: []frame{{clauses: true}}}
	for i, t := range sig {
		var next *Token
		if i+1 < len(sig) {
			next = &sig[i+1]
		}
		f.emit(t, next)
	}
	return f.out.String()
}

func (f *formatter) top() *frame {
	return &f.frames[len(f.frames)-1]
}

func (f *formatter) emit(t Token, next *Token) {
	var upper string
	isKw := false
	text := t.Text
	if t.Kind == Word {
		upper = strings.ToUpper(t.Text)
		if keywords[upper] && !isPunct(f.prev, ".") {
			isKw = true
			text = upper
		}
	}

	start := f.prev == nil || f.stmtEnd || isPunct(f.prev, "(")
	brk := !start && isKw && f.top().clauses && f.breaksBefore(upper, next)

	f.out.WriteString(f.separator(t, upper, isKw, brk))
	f.out.WriteString(text)
	f.track(t, upper, isKw, brk, start, next)
}

func (f *formatter) separator(t Token, upper string, isKw, brk bool) string {
	if f.prev == nil {
		return ""
	}
	if f.stmtEnd {
		return "\n\n"
	}
	fr := f.top()
	if brk {
		return lineAt(fr.indent)
	}
	if fr.clauses {
		if isKw && (upper == "AND" || upper == "OR") && conditions[fr.clause] && !(upper == "AND" && fr.between) {
			return lineAt(fr.indent + indentWidth)
		}
		if isPunct(f.prev, ",") && fr.clause == "SELECT" {
			return lineAt(fr.indent + indentWidth)
		}
	}
	if f.newline {
		return lineAt(fr.indent)
	}
	if f.tight(t) {
		return ""
	}
	return " "
}

// breaksBefore reports whether keyword upper opens a clause line.
func (f *formatter) breaksBefore(upper string, next *Token) bool {
	var nextUpper string
	if next != nil && next.Kind == Word {
		nextUpper = strings.ToUpper(next.Text)
	}

	switch {
	case joinWords[upper]:
		if joinWords[f.prevUpper] {
			return false
		}
		return upper == "JOIN" || joinWords[nextUpper]
	case upper == "GROUP" || upper == "ORDER":
		return nextUpper == "BY"
	case upper == "SET":
		return f.top().clause == "UPDATE"
	case upper == "UPDATE":
		return f.prevUpper != "FOR" && f.prevUpper != "ON"
	case upper == "FROM":
		return f.prevUpper != "DISTINCT"
	case clauses[upper]:
		return true
	}
	return false
}

// tight reports whether t is written directly after the previous token.
func (f *formatter) tight(t Token) bool {
	p := f.prev
	if f.unary {
		return true
	}
	if t.Kind == Punct || t.Kind == Operator {
		switch t.Text {
		case ",", ";", ")", "]", "::":
			return true
		case ".":
			return p.Kind != Number
		case "(":
			return p.Kind == QuotedIdent || isPunct(p, ")") || isPunct(p, "]") ||
				(p.Kind == Word && (!f.prevKw || callable[f.prevUpper]))
		case "[":
			return p.Kind == Word || p.Kind == QuotedIdent || isPunct(p, ")") || isPunct(p, "]")
		}
	}
	switch {
	case isPunct(p, "("), isPunct(p, "["), p.Kind == Operator && p.Text == "::":
		return true
	case isPunct(p, "."):
		return t.Kind != Number
	}
	return false
}

func (f *formatter) track(t Token, upper string, isKw, brk, start bool, next *Token) {
	unary := t.Kind == Operator && (t.Text == "-" || t.Text == "+") && f.unaryContext() && next != nil &&
		(next.Kind == Number || next.Kind == Word || next.Kind == QuotedIdent || next.Kind == Placeholder || isPunct(next, "("))

	fr := f.top()
	switch {
	case isPunct(&t, "("):
		child := frame{indent: fr.indent}
		if next != nil && next.Kind == Word {
			if n := strings.ToUpper(next.Text); n == "SELECT" || n == "WITH" {
				child = frame{indent: fr.indent + indentWidth, clauses: true}
			}
		}
		f.frames = append(f.frames, child)
	case isPunct(&t, ")"):
		if len(f.frames) > 1 {
			f.frames = f.frames[:len(f.frames)-1]
		}
	case isPunct(&t, ";"):
		f.frames = append(f.frames[:0], frame{clauses: true})
	case isKw && fr.clauses:
		switch {
		case upper == "BETWEEN":
			fr.between = true
		case upper == "AND" && fr.between:
			fr.between = false
		case upper == "ON":
			fr.clause = "ON"
		case brk && joinWords[upper]:
			fr.clause = "JOIN"
		case clauses[upper] && (brk || start):
			fr.clause = upper
		}
	}

	f.stmtEnd = isPunct(&t, ";")
	f.newline = t.Kind == LineComment
	f.unary = unary
	f.prev = &t
	f.prevKw = isKw
	f.prevUpper = upper
}

// unaryContext reports whether a sign written now would be a prefix sign.
func (f *formatter) unaryContext() bool {
	p := f.prev
	if p == nil || f.prevKw {
		return true
	}
	if p.Kind == Operator {
		return true
	}
	return isPunct(p, "(") || isPunct(p, ",") || isPunct(p, "[")
}

func isPunct(t *Token, text string) bool {
	return t != nil && t.Kind == Punct && t.Text == text
}

func lineAt(indent int) string {
	return "\n" + strings.Repeat(" ", indent)
}
