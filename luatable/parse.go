package luatable

import (
	"errors"
	"fmt"
	"strconv"
)

// ParseError represents a parsing error with location.
type ParseError struct {
	Message string
	Pos     Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// AsParseError extracts a *ParseError from an error chain.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// Parser parses Lua literal-table text into Values.
//
// The parser is strict: any malformed literal is an error. Sidecar files are
// merged all-or-nothing, so silently repairing a damaged file would risk
// dropping a device's annotations.
type Parser struct {
	stream *TokenStream
}

// Parse parses a single Lua literal value.
func Parse(input string) (*Value, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	v, perr := p.parseValue()
	if perr != nil {
		return nil, perr
	}
	if !p.stream.AtEnd() {
		tok := p.stream.Peek()
		return nil, &ParseError{
			Message: fmt.Sprintf("trailing content after value: %s", tok),
			Pos:     tok.Pos,
		}
	}
	return v, nil
}

// ParseDocument parses a complete sidecar file: an optional leading `return`
// keyword followed by the root table, with nothing after it. The root value
// must be a table.
func ParseDocument(input string) (*Value, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}

	tok := p.stream.Peek()
	if tok.Type == TokenIdent && tok.Value == "return" {
		p.stream.Advance()
	}

	tok = p.stream.Peek()
	if tok.Type != TokenLBrace {
		return nil, &ParseError{
			Message: fmt.Sprintf("expected table constructor, got %s", tok.Type),
			Pos:     tok.Pos,
		}
	}

	root, perr := p.parseTable()
	if perr != nil {
		return nil, perr
	}
	if !p.stream.AtEnd() {
		after := p.stream.Peek()
		return nil, &ParseError{
			Message: fmt.Sprintf("trailing content after document: %s", after),
			Pos:     after.Pos,
		}
	}
	return root, nil
}

func newParser(input string) (*Parser, error) {
	lexer := NewLexer(input)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, err
	}
	return &Parser{stream: NewTokenStream(tokens)}, nil
}

// parseValue parses any literal value.
func (p *Parser) parseValue() (*Value, *ParseError) {
	tok := p.stream.Peek()

	switch tok.Type {
	case TokenNil:
		p.stream.Advance()
		return withPos(Nil(), tok.Pos), nil

	case TokenTrue:
		p.stream.Advance()
		return withPos(Bool(true), tok.Pos), nil

	case TokenFalse:
		p.stream.Advance()
		return withPos(Bool(false), tok.Pos), nil

	case TokenInt:
		p.stream.Advance()
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			// Out of int64 range; keep the value as a float.
			f, ferr := strconv.ParseFloat(tok.Value, 64)
			if ferr != nil {
				return nil, &ParseError{Message: fmt.Sprintf("malformed number %q", tok.Value), Pos: tok.Pos}
			}
			return withPos(Float(f), tok.Pos), nil
		}
		return withPos(Int(n), tok.Pos), nil

	case TokenFloat:
		p.stream.Advance()
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("malformed number %q", tok.Value), Pos: tok.Pos}
		}
		return withPos(Float(f), tok.Pos), nil

	case TokenString:
		p.stream.Advance()
		return withPos(Str(tok.Value), tok.Pos), nil

	case TokenLBrace:
		return p.parseTable()

	case TokenEOF:
		return nil, &ParseError{Message: "unexpected end of input", Pos: tok.Pos}

	default:
		return nil, &ParseError{
			Message: fmt.Sprintf("unexpected token %s", tok),
			Pos:     tok.Pos,
		}
	}
}

// parseTable parses a table constructor:
//
//	{ v1, key = v2; ["k"] = v3, [4] = v4 }
//
// Entries are separated by , or ; and a trailing separator is accepted.
// Positional values receive implicit sequential integer keys starting at 1;
// explicit [n] keys do not advance the implicit counter, matching Lua.
func (p *Parser) parseTable() (*Value, *ParseError) {
	open := p.stream.Advance() // consume {

	var entries []Entry
	nextIndex := int64(1)
	needSep := false

	for {
		tok := p.stream.Peek()

		if tok.Type == TokenRBrace {
			p.stream.Advance()
			break
		}

		if tok.Type == TokenEOF {
			return nil, &ParseError{Message: "unterminated table", Pos: open.Pos}
		}

		if tok.Type == TokenSep {
			p.stream.Advance()
			needSep = false
			continue
		}

		if needSep {
			return nil, &ParseError{
				Message: fmt.Sprintf("expected , or ; before %s", tok),
				Pos:     tok.Pos,
			}
		}

		entry, perr := p.parseEntry(&nextIndex)
		if perr != nil {
			return nil, perr
		}
		entries = append(entries, *entry)
		needSep = true
	}

	return withPos(Table(entries...), open.Pos), nil
}

// parseEntry parses one table entry: positional, ident = v, or [key] = v.
func (p *Parser) parseEntry(nextIndex *int64) (*Entry, *ParseError) {
	tok := p.stream.Peek()

	switch tok.Type {
	case TokenLBracket:
		p.stream.Advance()
		key, perr := p.parseBracketKey()
		if perr != nil {
			return nil, perr
		}
		if _, perr := p.stream.Expect(TokenRBracket); perr != nil {
			return nil, perr
		}
		if _, perr := p.stream.Expect(TokenEq); perr != nil {
			return nil, perr
		}
		val, perr := p.parseValue()
		if perr != nil {
			return nil, perr
		}
		return &Entry{Key: key, Value: val}, nil

	case TokenIdent:
		// Identifier keys only appear as `ident = value`; a bare identifier
		// is not a literal.
		if p.stream.PeekN(1).Type != TokenEq {
			return nil, &ParseError{
				Message: fmt.Sprintf("unexpected identifier %q", tok.Value),
				Pos:     tok.Pos,
			}
		}
		p.stream.Advance() // ident
		p.stream.Advance() // =
		val, perr := p.parseValue()
		if perr != nil {
			return nil, perr
		}
		return &Entry{Key: StrKey(tok.Value), Value: val}, nil

	default:
		// Positional value
		val, perr := p.parseValue()
		if perr != nil {
			return nil, perr
		}
		key := IntKey(*nextIndex)
		*nextIndex++
		return &Entry{Key: key, Value: val}, nil
	}
}

// parseBracketKey parses the inside of [key]: an integer or a string.
func (p *Parser) parseBracketKey() (Key, *ParseError) {
	tok := p.stream.Peek()

	switch tok.Type {
	case TokenInt:
		p.stream.Advance()
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return Key{}, &ParseError{Message: fmt.Sprintf("malformed key %q", tok.Value), Pos: tok.Pos}
		}
		return IntKey(n), nil

	case TokenString:
		p.stream.Advance()
		return StrKey(tok.Value), nil

	default:
		return Key{}, &ParseError{
			Message: fmt.Sprintf("expected integer or string key, got %s", tok.Type),
			Pos:     tok.Pos,
		}
	}
}

func withPos(v *Value, pos Position) *Value {
	v.SetPos(pos)
	return v
}
