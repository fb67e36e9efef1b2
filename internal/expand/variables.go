package expand

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/phillarmonic/ushell/internal/ushellerr"
)

const dollarSentinel = "\x00USHELL_LITERAL_DOLLAR\x00"

// expandVariables performs step 1 of §4.2: ${...} parameter operators
// and bare $NAME / positional variable substitution.
func expandVariables(s string, ctx *Context) (string, error) {
	stashed := strings.ReplaceAll(s, `\$`, dollarSentinel)

	var out strings.Builder
	runes := []rune(stashed)
	n := len(runes)

	for i := 0; i < n; i++ {
		if runes[i] != '$' {
			out.WriteRune(runes[i])
			continue
		}
		if i+1 >= n {
			out.WriteRune('$')
			continue
		}

		if runes[i+1] == '{' {
			end := matchBrace(runes, i+1)
			if end < 0 {
				return "", ushellerr.NewExpansionError("unterminated ${...}")
			}
			inner := string(runes[i+2 : end])
			val, err := expandParameter(inner, ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(val)
			i = end
			continue
		}

		if name, width := matchBareVar(runes[i+1:]); width > 0 {
			val, err := lookupWithNounset(name, ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(val)
			i += width
			continue
		}

		out.WriteRune('$')
	}

	return strings.ReplaceAll(out.String(), dollarSentinel, "$"), nil
}

// matchBrace returns the index of the '}' matching the '{' at
// runes[start], respecting nested ${...} groups.
func matchBrace(runes []rune, start int) int {
	depth := 0
	for i := start; i < len(runes); i++ {
		switch runes[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchBareVar matches a bare variable reference at the start of runes:
// an uppercase identifier ([A-Z_][A-Z0-9_]*), a single digit (positional
// $0-$9), or '#' (argument count). Returns the name and the number of
// runes consumed (not counting the leading '$').
func matchBareVar(runes []rune) (name string, width int) {
	if len(runes) == 0 {
		return "", 0
	}
	c := runes[0]
	if c == '#' {
		return "#", 1
	}
	if c >= '0' && c <= '9' {
		return string(c), 1
	}
	if !(c == '_' || (c >= 'A' && c <= 'Z')) {
		return "", 0
	}
	i := 0
	for i < len(runes) {
		c := runes[i]
		if c == '_' || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			i++
			continue
		}
		break
	}
	return string(runes[:i]), i
}

// graphemeLen counts ${#VAR} in composed characters rather than raw
// runes, so a combining-mark sequence (e.g. "é") normalizes to a
// single NFC code point and counts once, matching how a terminal would
// display it rather than how UTF-8 encodes it.
func graphemeLen(s string) int {
	n := 0
	for range norm.NFC.String(s) {
		n++
	}
	return n
}

func lookupWithNounset(name string, ctx *Context) (string, error) {
	val, ok := lookupVariable(name, ctx)
	if !ok && ctx.Nounset {
		return "", ushellerr.NewExpansionError("%s: unbound variable", name)
	}
	return val, nil
}

// lookupVariable resolves $NAME, positional $0-$9, and $# against the
// context, falling through to shell then process environment for plain
// names.
func lookupVariable(name string, ctx *Context) (string, bool) {
	if name == "#" {
		if ctx.Positional == nil {
			return "0", true
		}
		return fmt.Sprintf("%d", len(ctx.Positional)-1), true
	}
	if len(name) == 1 && name[0] >= '0' && name[0] <= '9' {
		idx := int(name[0] - '0')
		if ctx.Positional != nil && idx < len(ctx.Positional) {
			return ctx.Positional[idx], true
		}
		return "", false
	}
	return ctx.Lookup(name)
}

// expandParameter expands the body of ${...}, dispatching on the
// parameter operator present.
func expandParameter(body string, ctx *Context) (string, error) {
	if strings.HasPrefix(body, "#") {
		name := body[1:]
		val, _ := lookupVariable(name, ctx)
		return fmt.Sprintf("%d", graphemeLen(val)), nil
	}

	if op, idx := findOperator(body, ":-"); idx >= 0 {
		name := body[:idx]
		def := body[idx+len(op):]
		val, ok := lookupVariable(name, ctx)
		if ok && val != "" {
			return expandNested(val, ctx), nil
		}
		return expandNested(def, ctx), nil
	}
	if op, idx := findOperator(body, ":+"); idx >= 0 {
		name := body[:idx]
		alt := body[idx+len(op):]
		val, ok := lookupVariable(name, ctx)
		if ok && val != "" {
			return expandNested(alt, ctx), nil
		}
		return "", nil
	}
	if op, idx := findOperator(body, ":?"); idx >= 0 {
		name := body[:idx]
		msg := body[idx+len(op):]
		val, ok := lookupVariable(name, ctx)
		if ok && val != "" {
			return val, nil
		}
		if msg == "" {
			msg = "parameter null or not set"
		}
		return "", ushellerr.NewExpansionError("%s: %s", name, msg)
	}
	if idx := strings.IndexByte(body, '='); idx >= 0 && isPlainName(body[:idx]) {
		name := body[:idx]
		def := body[idx+1:]
		val, ok := lookupVariable(name, ctx)
		if ok && val != "" {
			return val, nil
		}
		expanded := expandNested(def, ctx)
		ctx.Set(name, expanded)
		return expanded, nil
	}

	// Bare ${NAME} with no operator.
	return lookupWithNounset(body, ctx)
}

// findOperator finds the first occurrence of op within body that falls
// outside a nested ${...} span, so ${A:-${B:-c}} parses correctly.
func findOperator(body, op string) (string, int) {
	depth := 0
	for i := 0; i+len(op) <= len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 && body[i:i+len(op)] == op {
			return op, i
		}
	}
	return "", -1
}

func isPlainName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c == '_' || (c >= 'A' && c <= 'Z') || (i > 0 && c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}

// expandNested recursively expands variable references inside a default
// or alternate value (e.g. ${A:-$B} or ${A:-${B}}).
func expandNested(s string, ctx *Context) string {
	v, err := expandVariables(s, ctx)
	if err != nil {
		return s
	}
	return v
}
