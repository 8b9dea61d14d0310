package refdata

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseListLiteral parses a list of quoted strings in the form the reference
// CSVs store them: ['Antibiotics', "Doctor's advice"]. An empty or blank cell
// is an empty list. Both quote styles and backslash escapes are accepted.
func ParseListLiteral(s string) ([]string, error) {
	p := listParser{src: []rune(strings.TrimSpace(s))}
	if len(p.src) == 0 {
		return []string{}, nil
	}
	return p.parse()
}

type listParser struct {
	src []rune
	pos int
}

func (p *listParser) parse() ([]string, error) {
	if !p.consume('[') {
		return nil, p.errorf("expected '['")
	}
	out := []string{}
	p.skipSpace()
	if p.consume(']') {
		return out, p.end()
	}
	for {
		p.skipSpace()
		item, err := p.quoted()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
		p.skipSpace()
		if p.consume(']') {
			return out, p.end()
		}
		if !p.consume(',') {
			return nil, p.errorf("expected ',' or ']'")
		}
		p.skipSpace()
		// trailing comma
		if p.consume(']') {
			return out, p.end()
		}
	}
}

func (p *listParser) quoted() (string, error) {
	if p.pos >= len(p.src) {
		return "", p.errorf("unexpected end of input")
	}
	quote := p.src[p.pos]
	if quote != '\'' && quote != '"' {
		return "", p.errorf("expected quoted string")
	}
	p.pos++

	var b strings.Builder
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		p.pos++
		switch {
		case r == quote:
			return b.String(), nil
		case r == '\\':
			if p.pos >= len(p.src) {
				return "", p.errorf("unterminated escape")
			}
			b.WriteRune(unescape(p.src[p.pos]))
			p.pos++
		default:
			b.WriteRune(r)
		}
	}
	return "", p.errorf("unterminated string")
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	}
	return r
}

func (p *listParser) consume(r rune) bool {
	if p.pos < len(p.src) && p.src[p.pos] == r {
		p.pos++
		return true
	}
	return false
}

func (p *listParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *listParser) end() error {
	p.skipSpace()
	if p.pos != len(p.src) {
		return p.errorf("unexpected trailing input")
	}
	return nil
}

func (p *listParser) errorf(msg string) error {
	return fmt.Errorf("list literal %q: %s at offset %d", string(p.src), msg, p.pos)
}
