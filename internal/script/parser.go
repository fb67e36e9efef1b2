package script

import (
	"regexp"
	"strings"

	"github.com/phillarmonic/ushell/internal/ushellerr"
)

var inlineFuncRe = regexp.MustCompile(`^(\w+)\s*\(\)\s*\{(.*)\}\s*$`)
var funcHeaderRe = regexp.MustCompile(`^(\w+)\s*\(\)\s*(\{)?\s*$`)

// Parser builds a Statement tree from script source, per §4.4.
type Parser struct{}

// New creates a script parser.
func New() *Parser {
	return &Parser{}
}

// Parse preprocesses src into logical lines and recursively parses
// them into a flat Statement list (top-level has no enclosing
// terminator).
func (p *Parser) Parse(src string) ([]Statement, error) {
	lines := preprocessLines(src)
	i := 0
	return p.parseBody(lines, &i, nil)
}

// parseInlineFragment parses a single-line fragment (the inline body of
// a then/else/do/pattern line or an inline function body) as its own
// mini statement list.
func (p *Parser) parseInlineFragment(text string) ([]Statement, error) {
	lines := splitTopLevelSemicolons(text)
	i := 0
	return p.parseBody(lines, &i, nil)
}

func firstWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parseBody consumes statements from lines starting at *i until stop
// reports true for the next line (or lines are exhausted).
func (p *Parser) parseBody(lines []string, i *int, stop func(string) bool) ([]Statement, error) {
	var stmts []Statement
	for *i < len(lines) {
		line := lines[*i]
		if stop != nil && stop(line) {
			return stmts, nil
		}
		st, err := p.parseOne(lines, i)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	return stmts, nil
}

func (p *Parser) parseOne(lines []string, i *int) (Statement, error) {
	line := lines[*i]
	switch firstWord(line) {
	case "if":
		return p.parseIf(lines, i)
	case "for":
		return p.parseFor(lines, i)
	case "while":
		return p.parseWhile(lines, i)
	case "until":
		return p.parseUntil(lines, i)
	case "case":
		return p.parseCase(lines, i)
	case "function":
		return p.parseFunction(lines, i)
	}

	if m := inlineFuncRe.FindStringSubmatch(line); m != nil {
		*i++
		inner, err := p.parseInlineFragment(m[2])
		if err != nil {
			return Statement{}, err
		}
		return Statement{Kind: KindBlock, Block: &Block{Type: BlockFunction, FuncName: m[1], Body: inner}, Raw: line}, nil
	}

	if m := funcHeaderRe.FindStringSubmatch(line); m != nil && (m[2] != "" || (*i+1 < len(lines) && strings.TrimSpace(lines[*i+1]) == "{")) {
		*i++
		if m[2] == "" {
			*i++
		}
		body, err := p.parseBody(lines, i, func(l string) bool { return strings.TrimSpace(l) == "}" })
		if err != nil {
			return Statement{}, err
		}
		if *i >= len(lines) {
			return Statement{}, ushellerr.NewParseError("function "+m[1]+": missing closing }", ushellerr.Pos{}, "", "")
		}
		*i++
		return Statement{Kind: KindBlock, Block: &Block{Type: BlockFunction, FuncName: m[1], Body: body}, Raw: line}, nil
	}

	*i++
	return Statement{Kind: KindCommand, Raw: line}, nil
}

func (p *Parser) parseIf(lines []string, i *int) (Statement, error) {
	header := lines[*i]
	cond := strings.TrimSpace(strings.TrimPrefix(header, "if"))
	*i++

	thenBody, err := p.consumeIntroducedBody(lines, i, "then", func(l string) bool {
		w := firstWord(l)
		return w == "else" || w == "fi"
	})
	if err != nil {
		return Statement{}, err
	}

	var elseBody []Statement
	if *i < len(lines) && firstWord(lines[*i]) == "else" {
		elseBody, err = p.consumeIntroducedBody(lines, i, "else", func(l string) bool {
			return firstWord(l) == "fi"
		})
		if err != nil {
			return Statement{}, err
		}
	}

	if *i >= len(lines) || firstWord(lines[*i]) != "fi" {
		return Statement{}, ushellerr.NewParseError("if: missing fi", ushellerr.Pos{}, "", "")
	}
	*i++

	return Statement{
		Kind:  KindBlock,
		Block: &Block{Type: BlockIf, Condition: cond, Body: thenBody, ElseBody: elseBody},
		Raw:   header,
	}, nil
}

// consumeIntroducedBody handles a keyword line ("then"/"else"/"do")
// that may carry an inline body fragment on the same logical line,
// followed by zero or more further body lines up to stop.
func (p *Parser) consumeIntroducedBody(lines []string, i *int, keyword string, stop func(string) bool) ([]Statement, error) {
	if *i >= len(lines) || firstWord(lines[*i]) != keyword {
		return nil, ushellerr.NewParseError(keyword+": expected "+keyword, ushellerr.Pos{}, "", "")
	}
	line := lines[*i]
	inline := strings.TrimSpace(strings.TrimPrefix(line, keyword))
	*i++

	var stmts []Statement
	if inline != "" {
		inlineStmts, err := p.parseInlineFragment(inline)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, inlineStmts...)
	}

	rest, err := p.parseBody(lines, i, stop)
	if err != nil {
		return nil, err
	}
	return append(stmts, rest...), nil
}

func (p *Parser) parseFor(lines []string, i *int) (Statement, error) {
	header := lines[*i]
	rest := strings.TrimSpace(strings.TrimPrefix(header, "for"))
	*i++

	var loopVar string
	var values []string
	if idx := strings.Index(rest, " in "); idx >= 0 {
		loopVar = strings.TrimSpace(rest[:idx])
		values = strings.Fields(rest[idx+4:])
	} else {
		loopVar = strings.TrimSpace(rest)
	}

	body, err := p.consumeIntroducedBody(lines, i, "do", func(l string) bool {
		return firstWord(l) == "done"
	})
	if err != nil {
		return Statement{}, err
	}
	if *i >= len(lines) || firstWord(lines[*i]) != "done" {
		return Statement{}, ushellerr.NewParseError("for: missing done", ushellerr.Pos{}, "", "")
	}
	*i++

	return Statement{
		Kind:  KindBlock,
		Block: &Block{Type: BlockFor, LoopVar: loopVar, Values: values, Body: body},
		Raw:   header,
	}, nil
}

func (p *Parser) parseWhile(lines []string, i *int) (Statement, error) {
	return p.parseLoop(lines, i, "while", BlockWhile)
}

func (p *Parser) parseUntil(lines []string, i *int) (Statement, error) {
	return p.parseLoop(lines, i, "until", BlockUntil)
}

func (p *Parser) parseLoop(lines []string, i *int, keyword string, bt BlockType) (Statement, error) {
	header := lines[*i]
	cond := strings.TrimSpace(strings.TrimPrefix(header, keyword))
	*i++

	body, err := p.consumeIntroducedBody(lines, i, "do", func(l string) bool {
		return firstWord(l) == "done"
	})
	if err != nil {
		return Statement{}, err
	}
	if *i >= len(lines) || firstWord(lines[*i]) != "done" {
		return Statement{}, ushellerr.NewParseError(keyword+": missing done", ushellerr.Pos{}, "", "")
	}
	*i++

	return Statement{
		Kind:  KindBlock,
		Block: &Block{Type: bt, Condition: cond, Body: body},
		Raw:   header,
	}, nil
}

func (p *Parser) parseCase(lines []string, i *int) (Statement, error) {
	header := lines[*i]
	rest := strings.TrimSpace(strings.TrimPrefix(header, "case"))
	*i++

	caseVal := rest
	if idx := strings.LastIndex(rest, " in"); idx >= 0 {
		caseVal = strings.TrimSpace(rest[:idx])
	}

	var arms []CaseArm
	for *i < len(lines) && firstWord(lines[*i]) != "esac" {
		patLine := lines[*i]
		parenIdx := strings.Index(patLine, ")")
		if parenIdx < 0 {
			return Statement{}, ushellerr.NewParseError("case: expected pattern)", ushellerr.Pos{}, "", "")
		}
		rawPatterns := strings.Split(patLine[:parenIdx], "|")
		var patterns []string
		for _, pat := range rawPatterns {
			patterns = append(patterns, strings.TrimSpace(pat))
		}
		inline := strings.TrimSpace(patLine[parenIdx+1:])
		*i++

		var body []Statement
		if inline != "" && inline != ";;" {
			inlineStmts, err := p.parseInlineFragment(inline)
			if err != nil {
				return Statement{}, err
			}
			body = append(body, inlineStmts...)
		}

		moreBody, err := p.parseBody(lines, i, func(l string) bool {
			w := firstWord(l)
			return w == "esac" || strings.Contains(l, ")")
		})
		if err != nil {
			return Statement{}, err
		}
		body = append(body, moreBody...)

		arms = append(arms, CaseArm{Patterns: patterns, Body: body})
	}

	if *i >= len(lines) || firstWord(lines[*i]) != "esac" {
		return Statement{}, ushellerr.NewParseError("case: missing esac", ushellerr.Pos{}, "", "")
	}
	*i++

	return Statement{
		Kind:  KindBlock,
		Block: &Block{Type: BlockCase, CaseValue: caseVal, Arms: arms},
		Raw:   header,
	}, nil
}

func (p *Parser) parseFunction(lines []string, i *int) (Statement, error) {
	header := lines[*i]
	rest := strings.TrimSpace(strings.TrimPrefix(header, "function"))

	if idx := strings.Index(rest, "{"); idx >= 0 {
		name := strings.TrimSpace(rest[:idx])
		body := strings.TrimSuffix(strings.TrimSpace(rest[idx+1:]), "}")
		*i++
		inner, err := p.parseInlineFragment(body)
		if err != nil {
			return Statement{}, err
		}
		return Statement{Kind: KindBlock, Block: &Block{Type: BlockFunction, FuncName: name, Body: inner}, Raw: header}, nil
	}

	name := rest
	*i++
	if *i >= len(lines) || strings.TrimSpace(lines[*i]) != "{" {
		return Statement{}, ushellerr.NewParseError("function "+name+": expected {", ushellerr.Pos{}, "", "")
	}
	*i++

	body, err := p.parseBody(lines, i, func(l string) bool {
		return strings.TrimSpace(l) == "}"
	})
	if err != nil {
		return Statement{}, err
	}
	if *i >= len(lines) {
		return Statement{}, ushellerr.NewParseError("function "+name+": missing closing }", ushellerr.Pos{}, "", "")
	}
	*i++

	return Statement{Kind: KindBlock, Block: &Block{Type: BlockFunction, FuncName: name, Body: body}, Raw: header}, nil
}
