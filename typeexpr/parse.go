package typeexpr

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"fixture-factory/internal/common"
)

// ParseError reports a malformed type expression. It is a configuration error.
type ParseError struct {
	Src string
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("typeexpr: %s at offset %d in %q", e.Msg, e.Pos, e.Src)
}

// Is classifies parse errors as configuration errors.
func (e *ParseError) Is(target error) bool {
	return target == common.ErrConfiguration
}

// Parse parses src against scope.
//
//	expr     := wildcard | pointer | slice | map | named
//	wildcard := "?" [ ("extends" | "super") expr ]
//	pointer  := "*" expr              (ground expressions only)
//	slice    := "[]" expr
//	map      := "map[" expr "]" expr
//	named    := IDENT [ "[" expr { "," expr } "]" ]
func Parse(src string, scope Scope) (Expr, error) {
	p := &parser{src: src, scope: scope}
	p.skipSpace()

	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}

	return e, nil
}

// MustParse is Parse for static expressions in tests and examples.
func MustParse(src string, scope Scope) Expr {
	e, err := Parse(src, scope)
	if err != nil {
		panic(err)
	}

	return e
}

type parser struct {
	src   string
	pos   int
	scope Scope
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Src: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) expect(s string) error {
	p.skipSpace()
	if !p.peek(s) {
		if p.pos >= len(p.src) {
			return p.errorf("expected %q, got end of input", s)
		}
		return p.errorf("expected %q", s)
	}

	p.pos += len(s)

	return nil
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if c != '_' && c != '.' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		p.pos++
	}

	return p.src[start:p.pos]
}

func (p *parser) parseExpr() (Expr, error) {
	p.skipSpace()

	switch {
	case p.pos >= len(p.src):
		return nil, p.errorf("expected type, got end of input")

	case p.peek("?"):
		p.pos++
		return p.parseWildcard()

	case p.peek("*"):
		p.pos++
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c, ok := elem.(Concrete)
		if !ok {
			return nil, p.errorf("pointer to non-concrete type %s", elem)
		}
		return Concrete{Type: reflect.PointerTo(c.Type)}, nil

	case p.peek("[]"):
		p.pos += 2
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return SliceOf(elem), nil

	case p.peek("map["):
		p.pos += len("map[")
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return MapOf(key, value), nil
	}

	return p.parseNamed()
}

func (p *parser) parseWildcard() (Expr, error) {
	p.skipSpace()

	save := p.pos
	switch kw := p.ident(); kw {
	case "extends":
		upper, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return Wildcard{Upper: upper}, nil
	case "super":
		lower, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return Wildcard{Lower: lower}, nil
	default:
		p.pos = save
		return Wildcard{}, nil
	}
}

func (p *parser) parseNamed() (Expr, error) {
	start := p.pos

	name := p.ident()
	if name == "" {
		return nil, p.errorf("unexpected %q", p.src[p.pos:p.pos+1])
	}

	if p.scope != nil && p.scope.IsParam(name) {
		return Var{Name: name}, nil
	}

	var (
		t  reflect.Type
		ok bool
	)
	if p.scope != nil {
		t, ok = p.scope.LookupType(name)
	}
	if !ok {
		p.pos = start
		return nil, p.errorf("unknown type name %q", name)
	}

	p.skipSpace()
	if !p.peek("[") {
		return Concrete{Type: t}, nil
	}

	p.pos++

	var args []Expr
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.skipSpace()
		if p.peek(",") {
			p.pos++
			continue
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		break
	}

	return Param{Raw: t, Args: args}, nil
}

// ParseList parses a comma separated list of expressions, honouring
// bracket nesting ("K, map[K]V, Pair[A, B]").
func ParseList(src string, scope Scope) ([]Expr, error) {
	parts, err := SplitTopLevel(src, ',')
	if err != nil {
		return nil, err
	}

	out := make([]Expr, 0, len(parts))
	for _, part := range parts {
		e, err := Parse(part, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, nil
}

// SplitTopLevel splits s on sep outside of square brackets.
// Empty input yields no parts.
func SplitTopLevel(s string, sep byte) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var (
		parts []string
		depth int
		last  int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, &ParseError{Src: s, Pos: i, Msg: "unbalanced ']'"}
			}
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}

	if depth != 0 {
		return nil, &ParseError{Src: s, Pos: len(s), Msg: "unbalanced '['"}
	}

	return append(parts, strings.TrimSpace(s[last:])), nil
}
