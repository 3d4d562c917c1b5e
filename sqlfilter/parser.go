// Package sqlfilter adapts the external string predicate syntax described
// in spec.md §6 into the cond.Condition tree the planner consumes. It is a
// hand-written recursive-descent parser: spec.md §1 treats the parser as an
// interchangeable collaborator ("any reasonable expression parser
// suffices"), and the teacher's own string-predicate parser
// (ast/parser.go) is PEG-generated from a separate grammar file rather than
// something to imitate line-by-line, so this package follows the teacher's
// convention of a small, self-contained, hand-maintained recursive-descent
// parser instead (the same shape OPA's rego parser reduces to once the
// generated scaffolding is stripped away).
package sqlfilter

import (
	"fmt"

	"github.com/bzczb/wut/cond"
	"github.com/bzczb/wut/werr"
)

// Parser compiles a string predicate into a cond.Condition.
type Parser interface {
	Parse(s string) (cond.Condition, error)
}

type defaultParser struct{}

// NewParser returns the default hand-written recursive-descent parser.
func NewParser() Parser { return defaultParser{} }

func (defaultParser) Parse(s string) (cond.Condition, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	c, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, newParseError(p.peek().pos, "unexpected token %q", p.peek().text)
	}
	return c, nil
}

func newParseError(pos int, format string, args ...any) error {
	return werr.New(werr.PredicateType, "sqlfilter: at offset %d: "+format, append([]any{pos}, args...)...)
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token  { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, text string) error {
	t := p.peek()
	if t.kind != kind || (text != "" && t.text != text) {
		return newParseError(t.pos, "expected %q, found %q", text, t.text)
	}
	p.advance()
	return nil
}

// parseOr handles OR, the lowest-precedence connective.
func (p *parser) parseOr() (cond.Condition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokKeyword && p.peek().text == "OR" {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = cond.BinOp{Op: cond.Or, Left: left, Right: right}
	}
	return left, nil
}

// parseAnd handles AND, binding tighter than OR.
func (p *parser) parseAnd() (cond.Condition, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokKeyword && p.peek().text == "AND" {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = cond.BinOp{Op: cond.And, Left: left, Right: right}
	}
	return left, nil
}

// parseNot handles a prefix NOT, binding tighter than AND/OR.
func (p *parser) parseNot() (cond.Condition, error) {
	if p.peek().kind == tokKeyword && p.peek().text == "NOT" {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return cond.UnaryOp{Op: cond.Not, Operand: operand}, nil
	}
	return p.parseComparison()
}

// parseComparison handles the leaf predicates: attr <op> literal,
// literal <op> attr, attr IN array, literal IN array, literal IN attr
// (membership in a collection-valued attribute), and a parenthesised
// sub-expression.
func (p *parser) parseComparison() (cond.Condition, error) {
	if p.peek().kind == tokLParen {
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	t := p.peek()
	switch {
	case t.kind == tokKeyword && t.text == "IN":
		p.advance()
		right, err := p.parseInRight()
		if err != nil {
			return nil, err
		}
		return cond.BinOp{Op: cond.In, Left: left, Right: right}, nil
	case t.kind == tokKeyword && t.text == "IS":
		p.advance()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return cond.BinOp{Op: cond.Is, Left: left, Right: right}, nil
	case t.kind == tokOp:
		op, err := binOpFor(t.text)
		if err != nil {
			return nil, newParseError(t.pos, "unknown operator %q", t.text)
		}
		p.advance()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return cond.BinOp{Op: op, Left: left, Right: right}, nil
	default:
		return nil, newParseError(t.pos, "expected a comparison operator or IN, found %q", t.text)
	}
}

func binOpFor(op string) (cond.BinOpKind, error) {
	switch op {
	case "=":
		return cond.Eq, nil
	case "!=":
		return cond.Ne, nil
	case "<":
		return cond.Lt, nil
	case "<=":
		return cond.Le, nil
	case ">":
		return cond.Gt, nil
	case ">=":
		return cond.Ge, nil
	default:
		return 0, fmt.Errorf("sqlfilter: unknown operator %q", op)
	}
}

// parseOperand parses an attribute reference or a scalar literal (not an
// array; arrays only appear on the right of IN).
func (p *parser) parseOperand() (cond.Condition, error) {
	t := p.peek()
	switch {
	case t.kind == tokIdent:
		p.advance()
		return cond.Attribute{Name: t.text}, nil
	case t.kind == tokBacktickIdent:
		p.advance()
		return cond.Attribute{Name: t.text}, nil
	case t.kind == tokNumber:
		p.advance()
		v, err := parseNumber(t.text)
		if err != nil {
			return nil, newParseError(t.pos, "invalid numeric literal %q", t.text)
		}
		return cond.Literal{Value: v}, nil
	case t.kind == tokString:
		p.advance()
		return cond.Literal{Value: t.text}, nil
	case t.kind == tokKeyword && t.text == "TRUE":
		p.advance()
		return cond.Literal{Value: true}, nil
	case t.kind == tokKeyword && t.text == "FALSE":
		p.advance()
		return cond.Literal{Value: false}, nil
	case t.kind == tokKeyword && t.text == "NULL":
		p.advance()
		return cond.Literal{Value: nil}, nil
	default:
		return nil, newParseError(t.pos, "expected an attribute or literal, found %q", t.text)
	}
}

// parseInRight parses the right-hand side of IN: either an array literal
// (`attr IN [v1, v2, ...]` / `literal IN [v1, v2, ...]`) or a bare attribute
// naming a collection-valued field (`literal IN attr`), the cond.In shape
// spec.md §4.1 documents as matched by inverted indexes.
func (p *parser) parseInRight() (cond.Condition, error) {
	if p.peek().kind == tokLBracket {
		return p.parseArrayLiteral()
	}
	return p.parseOperand()
}

// parseArrayLiteral parses `[v1, v2, ...]`, the right-hand side of IN.
func (p *parser) parseArrayLiteral() (cond.Condition, error) {
	if err := p.expect(tokLBracket, "["); err != nil {
		return nil, err
	}
	var items []cond.Condition
	if p.peek().kind != tokRBracket {
		for {
			operand, err := p.parseOperand()
			if err != nil {
				return nil, err
			}
			items = append(items, operand)
			if p.peek().kind == tokComma {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expect(tokRBracket, "]"); err != nil {
		return nil, err
	}
	return cond.Array{Items: items}, nil
}
