package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errUnexpectedEnd = errors.New("unexpected end of literal")

// ParseAttrs parses the mapping literal printed in a job's attrs field, e.g.
// {'mcdram': 'cache', 'numa': 'quad', 'nodes': 2}.
//
// Only data is accepted: mappings, lists (brackets or parentheses), quoted
// strings, integers, floats, True, False, None and bare words. Keys are
// stored in their string form.
func ParseAttrs(s string) (map[string]any, error) {
	p := &literalParser{src: s}
	p.skipSpace()
	if p.peek() != '{' {
		return nil, fmt.Errorf("attrs literal must start with '{' at offset %d", p.pos)
	}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("trailing characters at offset %d", p.pos)
	}
	return v.(map[string]any), nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) && strings.IndexByte(" \t\r\n", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *literalParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return errUnexpectedEnd
	}
	if p.src[p.pos] != c {
		return fmt.Errorf("expected %q at offset %d, got %q", c, p.pos, p.src[p.pos])
	}
	p.pos++
	return nil
}

func (p *literalParser) value() (any, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == 0:
		return nil, errUnexpectedEnd
	case c == '{':
		return p.mapping()
	case c == '[':
		return p.list(']')
	case c == '(':
		return p.list(')')
	case c == '\'' || c == '"':
		return p.quoted()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case isWordByte(c):
		return p.word(), nil
	default:
		return nil, fmt.Errorf("unexpected %q at offset %d", c, p.pos)
	}
}

func (p *literalParser) mapping() (map[string]any, error) {
	p.pos++ // {
	m := map[string]any{}
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return m, nil
		}
		k, err := p.value()
		if err != nil {
			return nil, err
		}
		key, ok := k.(string)
		if !ok {
			key = fmt.Sprint(k)
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		m[key] = v
		if done, err := p.separator('}'); err != nil || done {
			return m, err
		}
	}
}

func (p *literalParser) list(closing byte) ([]any, error) {
	p.pos++ // [ or (
	l := []any{}
	for {
		p.skipSpace()
		if p.peek() == closing {
			p.pos++
			return l, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		l = append(l, v)
		if done, err := p.separator(closing); err != nil || done {
			return l, err
		}
	}
}

// separator consumes a ',' or the closing byte and reports whether the
// container ended.
func (p *literalParser) separator(closing byte) (bool, error) {
	p.skipSpace()
	switch p.peek() {
	case ',':
		p.pos++
		return false, nil
	case closing:
		p.pos++
		return true, nil
	case 0:
		return false, errUnexpectedEnd
	default:
		return false, fmt.Errorf("expected ',' or %q at offset %d", closing, p.pos)
	}
}

func (p *literalParser) quoted() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
		switch {
		case c == quote:
			return b.String(), nil
		case c == '\\' && p.pos < len(p.src):
			e := p.src[p.pos]
			p.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", errUnexpectedEnd
}

func (p *literalParser) number() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("+-.0123456789eE", p.src[p.pos]) >= 0 {
		p.pos++
	}
	text := p.src[start:p.pos]
	if n, err := strconv.Atoi(text); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q at offset %d", text, start)
	}
	return f, nil
}

func (p *literalParser) word() any {
	start := p.pos
	for p.pos < len(p.src) && isWordByte(p.src[p.pos]) {
		p.pos++
	}
	switch w := p.src[start:p.pos]; w {
	case "True":
		return true
	case "False":
		return false
	case "None":
		return nil
	default:
		return w
	}
}

func isWordByte(c byte) bool {
	return c == '_' || c == '-' || c == '.' || c == '/' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
