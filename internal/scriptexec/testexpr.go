package scriptexec

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/phillarmonic/ushell/internal/token"
)

// isTestExpr recognizes a `[ ... ]` or `[[ ... ]]` condition and
// returns its inner text.
func isTestExpr(s string) (inner string, ok bool) {
	if strings.HasPrefix(s, "[[") && strings.HasSuffix(s, "]]") && len(s) >= 4 {
		return strings.TrimSpace(s[2 : len(s)-2]), true
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") && len(s) >= 2 {
		return strings.TrimSpace(s[1 : len(s)-1]), true
	}
	return "", false
}

// evalTestTokens tokenizes and expands a test expression's inner text,
// preserving quote boundaries from the source so `"$a"` still counts
// as a single (possibly empty) token.
func (ip *Interpreter) evalTestTokens(inner string, sh Shell) ([]string, error) {
	ctx := ip.buildExpandContext(sh)
	var out []string
	for _, t := range ip.expander.TokenizeCached(inner) {
		expanded, err := ip.expander.Expand(t.Text, ctx)
		if err != nil {
			return nil, err
		}
		for _, sub := range ip.expander.TokenizeCached(expanded) {
			out = append(out, token.StripQuotes(sub))
		}
	}
	return out, nil
}

// evaluateTest implements evaluate_test_expression per §4.4: a single
// token is a non-empty test, two tokens a unary operator, three a
// binary operator.
func evaluateTest(tokens []string) (bool, error) {
	switch len(tokens) {
	case 0:
		return false, nil
	case 1:
		return tokens[0] != "", nil
	case 2:
		return evalUnary(tokens[0], tokens[1])
	case 3:
		return evalBinary(tokens[0], tokens[1], tokens[2])
	default:
		return false, fmt.Errorf("test: too many arguments: %q", strings.Join(tokens, " "))
	}
}

func evalUnary(op, arg string) (bool, error) {
	switch op {
	case "-z":
		return len(arg) == 0, nil
	case "-n":
		return len(arg) != 0, nil
	case "-f":
		info, err := os.Stat(arg)
		return err == nil && !info.IsDir(), nil
	case "-d":
		info, err := os.Stat(arg)
		return err == nil && info.IsDir(), nil
	case "-e":
		_, err := os.Stat(arg)
		return err == nil, nil
	case "-r":
		return canRead(arg), nil
	case "-w":
		return canWrite(arg), nil
	case "-x":
		return canExec(arg), nil
	default:
		return false, fmt.Errorf("test: unsupported unary operator %q", op)
	}
}

func evalBinary(lhs, op, rhs string) (bool, error) {
	switch op {
	case "=", "==":
		return lhs == rhs, nil
	case "!=":
		return lhs != rhs, nil
	case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
		li, err := strconv.ParseInt(lhs, 0, 64)
		if err != nil {
			return false, fmt.Errorf("test: %q is not an integer", lhs)
		}
		ri, err := strconv.ParseInt(rhs, 0, 64)
		if err != nil {
			return false, fmt.Errorf("test: %q is not an integer", rhs)
		}
		switch op {
		case "-eq":
			return li == ri, nil
		case "-ne":
			return li != ri, nil
		case "-lt":
			return li < ri, nil
		case "-le":
			return li <= ri, nil
		case "-gt":
			return li > ri, nil
		default:
			return li >= ri, nil
		}
	default:
		return false, fmt.Errorf("test: unsupported binary operator %q", op)
	}
}
