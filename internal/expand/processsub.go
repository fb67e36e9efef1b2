package expand

import "strings"

// expandProcessSubstitution performs step 5 of §4.2: `<(cmd)` produces a
// path whose reads yield cmd's stdout; `>(cmd)` produces a path that,
// once written to, feeds cmd's stdin. The only contract (per §4.2) is
// that the result is a path readable/writable by the caller — this
// implementation uses a named pipe on Unix and a temp-file fallback on
// Windows.
func (e *Engine) expandProcessSubstitution(s string, ctx *Context) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], "<("):
			end := findParenClose(s, i+2)
			if end < 0 {
				out.WriteString(s[i:])
				i = len(s)
				continue
			}
			path, err := e.createInputSubstitution(s[i+2:end], ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(path)
			i = end + 1
		case strings.HasPrefix(s[i:], ">("):
			end := findParenClose(s, i+2)
			if end < 0 {
				out.WriteString(s[i:])
				i = len(s)
				continue
			}
			path, err := e.createOutputSubstitution(s[i+2:end], ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(path)
			i = end + 1
		default:
			out.WriteByte(s[i])
			i++
		}
	}
	return out.String(), nil
}
