package expand

import (
	"strconv"
	"strings"
)

// expandBraces performs step 3 of §4.2: comma lists `{a,b,c}` and
// numeric/char ranges `{m..n}` (negative steps allowed; zero-padding
// preserved when an endpoint has leading zeros). Produced items are
// space-joined so the later tokenizer yields one argument per item.
// Only the word holding the group (bounded by whitespace or an
// enclosing paren) is repeated, so `touch file.{txt,log}` becomes
// "touch file.txt file.log". The result is re-scanned for further brace
// groups, so `{a,b{1,2}}` expands to "a b1 b2" rather than duplicating
// "a" onto the nested group's siblings.
func expandBraces(s string) string {
	return strings.Join(expandBraceWord(s), " ")
}

// expandBraceWord expands the first brace group found in s and then
// re-scans the result for the next one, returning the fully expanded
// text as a single-element slice.
func expandBraceWord(s string) []string {
	start, open, close, ok := findBraceGroup(s)
	if !ok {
		return []string{s}
	}

	items, isBrace := braceItems(s[open+1 : close])
	if !isBrace {
		// Not an expandable group (e.g. a lone `{word}` with no comma
		// or range, or a block construct's `{`) — keep it literal and
		// keep scanning the remainder for real groups.
		rest := expandBraceWord(s[close+1:])
		literal := s[:close+1]
		out := make([]string, 0, len(rest))
		for _, r := range rest {
			out = append(out, literal+r)
		}
		return out
	}

	ws := strings.LastIndexAny(s[:start], " \t(") + 1
	we := len(s)
	if k := strings.IndexAny(s[close+1:], " \t)"); k >= 0 {
		we = close + 1 + k
	}
	words := make([]string, 0, len(items))
	for _, item := range items {
		words = append(words, s[ws:start]+item+s[close+1:we])
	}
	return expandBraceWord(s[:ws] + strings.Join(words, " ") + s[we:])
}

// findBraceGroup locates the first `{...}` group outside quotes,
// returning the index of the `{` (both as start and open) and the
// matching `}` index.
func findBraceGroup(s string) (start, open, close int, ok bool) {
	inSingle, inDouble := false, false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && !inSingle:
			escaped = true
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '{' && !inSingle && !inDouble:
			depth := 1
			for j := i + 1; j < len(s); j++ {
				switch s[j] {
				case '{':
					depth++
				case '}':
					depth--
					if depth == 0 {
						return i, i, j, true
					}
				}
			}
			return 0, 0, 0, false
		}
	}
	return 0, 0, 0, false
}

// braceItems expands the inside of a `{...}` group: a comma list or a
// `m..n` range. Returns ok=false if the body is neither (e.g. a single
// word with no comma — not a brace expansion at all).
func braceItems(body string) ([]string, bool) {
	if items, ok := rangeItems(body); ok {
		return items, true
	}
	if strings.Contains(body, ",") {
		return splitTopLevelComma(body), true
	}
	return nil, false
}

func splitTopLevelComma(body string) []string {
	var items []string
	depth := 0
	last := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, body[last:i])
				last = i + 1
			}
		}
	}
	items = append(items, body[last:])
	return items
}

func rangeItems(body string) ([]string, bool) {
	idx := strings.Index(body, "..")
	if idx < 0 {
		return nil, false
	}
	from := body[:idx]
	to := body[idx+2:]
	if from == "" || to == "" {
		return nil, false
	}

	if n1, err1 := strconv.Atoi(from); err1 == nil {
		if n2, err2 := strconv.Atoi(to); err2 == nil {
			width := 0
			if hasLeadingZero(from) || hasLeadingZero(to) {
				width = max(len(from), len(to))
			}
			return numericRange(n1, n2, width), true
		}
	}

	if len(from) == 1 && len(to) == 1 && isAlpha(from[0]) && isAlpha(to[0]) {
		return charRange(from[0], to[0]), true
	}

	return nil, false
}

func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func numericRange(from, to, width int) []string {
	var items []string
	step := 1
	if from > to {
		step = -1
	}
	for n := from; ; n += step {
		items = append(items, padNumber(n, width))
		if n == to {
			break
		}
	}
	return items
}

func padNumber(n, width int) string {
	s := strconv.Itoa(n)
	if width == 0 {
		return s
	}
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	for len(digits) < width {
		digits = "0" + digits
	}
	if neg {
		return "-" + digits
	}
	return digits
}

func charRange(from, to byte) []string {
	var items []string
	step := 1
	if from > to {
		step = -1
	}
	for c := int(from); ; c += step {
		items = append(items, string(rune(c)))
		if c == int(to) {
			break
		}
	}
	return items
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
