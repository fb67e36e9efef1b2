// Package token implements the shell's lexer: it turns a raw input line
// into operator-separated segments and, per segment, into whitespace
// tokens — honoring quotes, escapes, and the nested scopes (braces,
// parens, block keywords, here-docs) that make `;`, `&&`, `||` and `|`
// stop being operators.
package token

import "strings"

// Token is a single lexeme. Quotes and backslashes are preserved
// verbatim; Quoted records whether the lexeme was originally wrapped in
// a quote so later stages know whether to quote-strip it.
type Token struct {
	Text   string
	Quoted bool
}

// Segment is one slice of a command line between two chain operators.
// Op is the operator that follows this segment ("" for the last one).
type Segment struct {
	Text string
	Op   string
}

var blockOpeners = map[string]bool{
	"if": true, "for": true, "while": true, "until": true, "case": true,
}

var blockClosers = map[string]bool{
	"fi": true, "done": true, "esac": true,
}

// SplitByOperatorsDetailed splits input on the chain operators ; && || |
// and trailing &, left to right, skipping any operator characters found
// inside quotes, escapes, brace/paren nesting, an active here-doc, or a
// shell block construct (if…fi, do…done, case…esac, { … }).
func SplitByOperatorsDetailed(input string) []Segment {
	var segments []Segment
	var cur strings.Builder

	inSingle, inDouble := false, false
	escaped := false
	depth := 0   // brace/paren/block nesting, all treated as "protected"
	heredoc := false
	atWordStart := true
	var word strings.Builder

	flushWord := func() {
		w := word.String()
		word.Reset()
		if w == "" {
			return
		}
		if blockOpeners[w] {
			depth++
		} else if blockClosers[w] {
			if depth > 0 {
				depth--
			}
		}
	}

	runes := []rune(input)
	n := len(runes)

	emit := func(op string) {
		text := strings.TrimSpace(cur.String())
		cur.Reset()
		if text != "" {
			segments = append(segments, Segment{Text: text, Op: op})
		}
	}

	for i := 0; i < n; i++ {
		c := runes[i]

		if heredoc {
			cur.WriteRune(c)
			continue
		}

		if escaped {
			cur.WriteRune(c)
			escaped = false
			if !inSingle {
				word.WriteRune(c)
			}
			continue
		}

		switch {
		case c == '\\' && !inSingle:
			escaped = true
			cur.WriteRune(c)
			continue
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			cur.WriteRune(c)
			atWordStart = false
			continue
		case c == '"' && !inSingle:
			inDouble = !inDouble
			cur.WriteRune(c)
			atWordStart = false
			continue
		}

		if inSingle || inDouble {
			cur.WriteRune(c)
			continue
		}

		switch c {
		case '{', '(':
			depth++
			cur.WriteRune(c)
			word.WriteRune(c)
			atWordStart = false
			continue
		case '}', ')':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(c)
			word.WriteRune(c)
			atWordStart = false
			continue
		}

		if c == '<' && i+1 < n && runes[i+1] == '<' {
			// here-doc marker: stop splitting for the remainder of the line.
			heredoc = true
			cur.WriteRune(c)
			continue
		}

		if c == ' ' || c == '\t' {
			flushWord()
			atWordStart = true
			cur.WriteRune(c)
			continue
		}

		if depth == 0 {
			if c == '|' && i+1 < n && runes[i+1] == '|' {
				flushWord()
				emit("||")
				i++
				atWordStart = true
				continue
			}
			if c == '&' && i+1 < n && runes[i+1] == '&' {
				flushWord()
				emit("&&")
				i++
				atWordStart = true
				continue
			}
			if c == '|' {
				flushWord()
				emit("|")
				atWordStart = true
				continue
			}
			if c == ';' {
				flushWord()
				emit(";")
				atWordStart = true
				continue
			}
			if c == '&' {
				// Trailing & marks background; only treated as an operator
				// when nothing but whitespace follows it to the end of the
				// input.
				rest := strings.TrimLeft(string(runes[i+1:]), " \t")
				if rest == "" {
					cur.WriteRune(c)
					flushWord()
					emit("")
					return segments
				}
			}
		}

		cur.WriteRune(c)
		word.WriteRune(c)
		_ = atWordStart
	}

	flushWord()
	if strings.TrimSpace(cur.String()) != "" {
		segments = append(segments, Segment{Text: strings.TrimSpace(cur.String()), Op: ""})
	}

	return segments
}

// Rejoin reconstructs an input line from a segment list, for the
// operator-split idempotence property: splitting the rejoined line
// yields the same segments back.
func Rejoin(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		b.WriteString(seg.Text)
		if seg.Op != "" {
			b.WriteString(" ")
			b.WriteString(seg.Op)
			b.WriteString(" ")
		} else if i < len(segments)-1 {
			b.WriteString(" ; ")
		}
	}
	return b.String()
}

// Tokenize splits a cleaned segment into whitespace-delimited tokens,
// honoring quotes (which may contain whitespace) and brace-expansion
// depth (commas/spaces inside `{...}` never split a token early — the
// brace expander runs before Tokenize, so in practice nested braces are
// rare here, but the scanner stays depth-aware for safety).
func Tokenize(input string) []Token {
	var tokens []Token
	var cur strings.Builder
	quotedAny := false

	inSingle, inDouble := false, false
	escaped := false
	braceDepth := 0

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		tokens = append(tokens, Token{Text: cur.String(), Quoted: quotedAny})
		cur.Reset()
		quotedAny = false
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if escaped {
			cur.WriteRune('\\')
			cur.WriteRune(c)
			escaped = false
			continue
		}

		if c == '\\' && !inSingle {
			escaped = true
			continue
		}

		if c == '\'' && !inDouble {
			inSingle = !inSingle
			quotedAny = true
			cur.WriteRune(c)
			continue
		}
		if c == '"' && !inSingle {
			inDouble = !inDouble
			quotedAny = true
			cur.WriteRune(c)
			continue
		}

		if inSingle || inDouble {
			cur.WriteRune(c)
			continue
		}

		if c == '{' {
			braceDepth++
			cur.WriteRune(c)
			continue
		}
		if c == '}' {
			if braceDepth > 0 {
				braceDepth--
			}
			cur.WriteRune(c)
			continue
		}

		if (c == ' ' || c == '\t') && braceDepth == 0 {
			flush()
			continue
		}

		cur.WriteRune(c)
	}
	if escaped {
		cur.WriteRune('\\')
	}
	flush()

	return tokens
}

// StripQuotes removes one layer of quoting from a token's text — the
// post-step applied to arguments that did not undergo expansion, so
// expansion output (which never carries literal quote characters) is
// left untouched.
func StripQuotes(tok Token) string {
	if !tok.Quoted {
		return tok.Text
	}
	return stripQuotesFrom(tok.Text)
}

func stripQuotesFrom(s string) string {
	var b strings.Builder
	inSingle, inDouble := false, false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		switch {
		case c == '\\' && !inSingle:
			if inDouble {
				escaped = true
				continue
			}
			escaped = true
			continue
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			continue
		case c == '"' && !inSingle:
			inDouble = !inDouble
			continue
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
