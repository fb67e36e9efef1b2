package script

import "strings"

// preprocessLines turns script source into a flat list of logical
// lines: blank lines and whole-line comments are dropped, a trailing
// unescaped backslash joins a line to the next, and each resulting
// line is split on top-level `;` — outside quotes and outside brace or
// paren nesting, so `name() { echo hi; }` and `$(echo a; echo b)` keep
// their `;` protected. A one-line block construct like
// `if x; then y; fi` is deliberately split into "if x", "then y", "fi"
// — the block parser recognizes then/else bodies inlined on the same
// logical line as the keyword that introduces them.
func preprocessLines(src string) []string {
	var joined []string
	var cont strings.Builder

	for _, raw := range strings.Split(src, "\n") {
		line := raw
		if cont.Len() > 0 {
			line = cont.String() + " " + strings.TrimSpace(raw)
			cont.Reset()
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasSuffix(trimmed, "\\") && !strings.HasSuffix(trimmed, "\\\\") {
			cont.WriteString(strings.TrimSpace(strings.TrimSuffix(trimmed, "\\")))
			continue
		}

		joined = append(joined, trimmed)
	}
	if cont.Len() > 0 {
		joined = append(joined, cont.String())
	}

	var out []string
	for _, line := range joined {
		out = append(out, splitTopLevelSemicolons(line)...)
	}
	return out
}

// splitTopLevelSemicolons splits line on `;` (and `;;`, which yields
// the same boundary since the empty text between the two semicolons is
// dropped), skipping semicolons found inside quotes, escapes, or
// brace/paren nesting.
func splitTopLevelSemicolons(line string) []string {
	var out []string
	var cur strings.Builder

	inSingle, inDouble := false, false
	escaped := false
	depth := 0

	emit := func() {
		text := strings.TrimSpace(cur.String())
		cur.Reset()
		if text != "" {
			out = append(out, text)
		}
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if escaped {
			cur.WriteRune(c)
			escaped = false
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
			continue
		case c == '"' && !inSingle:
			inDouble = !inDouble
			cur.WriteRune(c)
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
			continue
		case '}', ')':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(c)
			continue
		}

		if c == ';' && depth == 0 {
			emit()
			continue
		}

		cur.WriteRune(c)
	}
	emit()

	return out
}
