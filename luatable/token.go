package luatable

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexer token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenNil    // nil
	TokenTrue   // true
	TokenFalse  // false
	TokenInt    // 123, -456
	TokenFloat  // 1.23, -4.56e7
	TokenString // "quoted", 'quoted', [[long]]
	TokenIdent  // bare identifier key, or the return keyword

	// Structural
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLBracket // [
	TokenRBracket // ]
	TokenEq       // =
	TokenSep      // , or ;
)

// String returns the token type name.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return "ERROR"
	case TokenNil:
		return "NIL"
	case TokenTrue:
		return "TRUE"
	case TokenFalse:
		return "FALSE"
	case TokenInt:
		return "INT"
	case TokenFloat:
		return "FLOAT"
	case TokenString:
		return "STRING"
	case TokenIdent:
		return "IDENT"
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	case TokenEq:
		return "="
	case TokenSep:
		return "SEP"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexer token.
type Token struct {
	Type  TokenType
	Value string
	Pos   Position
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Value == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

// Lexer tokenizes Lua literal-table text.
type Lexer struct {
	input string
	pos   int // Current position in input
	line  int // Current line number (1-based)
	col   int // Current column number (1-based)
	err   *ParseError
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		pos:   0,
		line:  1,
		col:   1,
	}
}

// Tokenize returns all tokens from the input, or the first lexical error.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	if l.err != nil {
		return tokens, l.err
	}
	return tokens, nil
}

// nextToken returns the next token.
func (l *Lexer) nextToken() Token {
	if err := l.skipWhitespaceAndComments(); err != nil {
		l.err = err
		return Token{Type: TokenError, Pos: err.Pos}
	}

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.currentPos()}
	}

	startPos := l.currentPos()
	ch := l.peek()

	switch ch {
	case '{':
		l.advance()
		return Token{Type: TokenLBrace, Value: "{", Pos: startPos}
	case '}':
		l.advance()
		return Token{Type: TokenRBrace, Value: "}", Pos: startPos}
	case '[':
		// [[ and [=[ open long strings; a lone [ is a bracketed key.
		if l.peekAt(1) == '[' || l.peekAt(1) == '=' {
			return l.scanLongString()
		}
		l.advance()
		return Token{Type: TokenLBracket, Value: "[", Pos: startPos}
	case ']':
		l.advance()
		return Token{Type: TokenRBracket, Value: "]", Pos: startPos}
	case '=':
		l.advance()
		return Token{Type: TokenEq, Value: "=", Pos: startPos}
	case ',', ';':
		l.advance()
		return Token{Type: TokenSep, Value: string(ch), Pos: startPos}
	case '"', '\'':
		return l.scanString()
	}

	// Numbers (including negative and leading-dot floats)
	if ch == '-' || isDigit(ch) || (ch == '.' && isDigit(l.peekAt(1))) {
		return l.scanNumber()
	}

	// Identifiers and keywords
	if isIdentStart(ch) {
		return l.scanIdentOrKeyword()
	}

	l.err = &ParseError{Message: fmt.Sprintf("unexpected character %q", ch), Pos: startPos}
	l.advance()
	return Token{Type: TokenError, Value: string(ch), Pos: startPos}
}

// scanString scans a single- or double-quoted string with escapes.
func (l *Lexer) scanString() Token {
	startPos := l.currentPos()
	quote := l.peek()
	l.advance() // consume opening quote

	var sb strings.Builder
	for {
		if l.pos >= len(l.input) {
			l.err = &ParseError{Message: "unterminated string", Pos: startPos}
			return Token{Type: TokenError, Value: sb.String(), Pos: startPos}
		}

		ch := l.peek()
		if ch == quote {
			l.advance() // consume closing quote
			break
		}
		if ch == '\n' {
			l.err = &ParseError{Message: "unterminated string", Pos: startPos}
			return Token{Type: TokenError, Value: sb.String(), Pos: startPos}
		}

		if ch == '\\' {
			l.advance()
			if l.pos >= len(l.input) {
				l.err = &ParseError{Message: "unterminated escape", Pos: l.currentPos()}
				return Token{Type: TokenError, Value: sb.String(), Pos: startPos}
			}
			escaped := l.peek()
			switch escaped {
			case 'n':
				sb.WriteByte('\n')
				l.advance()
			case 't':
				sb.WriteByte('\t')
				l.advance()
			case 'r':
				sb.WriteByte('\r')
				l.advance()
			case 'a':
				sb.WriteByte('\a')
				l.advance()
			case 'b':
				sb.WriteByte('\b')
				l.advance()
			case 'f':
				sb.WriteByte('\f')
				l.advance()
			case 'v':
				sb.WriteByte('\v')
				l.advance()
			case '\\':
				sb.WriteByte('\\')
				l.advance()
			case '"':
				sb.WriteByte('"')
				l.advance()
			case '\'':
				sb.WriteByte('\'')
				l.advance()
			case '\n':
				// Backslash-newline is a line continuation: a literal newline.
				sb.WriteByte('\n')
				l.advance()
			case '\r':
				l.advance()
				if l.pos < len(l.input) && l.peek() == '\n' {
					l.advance()
				}
				sb.WriteByte('\n')
			default:
				if isDigit(escaped) {
					// Decimal escape \ddd, up to three digits.
					n := 0
					for i := 0; i < 3 && l.pos < len(l.input) && isDigit(l.peek()); i++ {
						n = n*10 + int(l.peek()-'0')
						l.advance()
					}
					if n > 255 {
						l.err = &ParseError{Message: fmt.Sprintf("decimal escape too large: \\%d", n), Pos: startPos}
						return Token{Type: TokenError, Value: sb.String(), Pos: startPos}
					}
					sb.WriteByte(byte(n))
				} else {
					sb.WriteByte(escaped)
					l.advance()
				}
			}
		} else {
			sb.WriteByte(ch)
			l.advance()
		}
	}

	return Token{Type: TokenString, Value: sb.String(), Pos: startPos}
}

// scanLongString scans [[...]] and [=[...]=] forms.
func (l *Lexer) scanLongString() Token {
	startPos := l.currentPos()
	l.advance() // consume first [

	level := 0
	for l.pos < len(l.input) && l.peek() == '=' {
		level++
		l.advance()
	}
	if l.pos >= len(l.input) || l.peek() != '[' {
		l.err = &ParseError{Message: "malformed long string opener", Pos: startPos}
		return Token{Type: TokenError, Pos: startPos}
	}
	l.advance() // consume second [

	closer := "]" + strings.Repeat("=", level) + "]"
	end := strings.Index(l.input[l.pos:], closer)
	if end < 0 {
		l.err = &ParseError{Message: "unterminated long string", Pos: startPos}
		return Token{Type: TokenError, Pos: startPos}
	}

	content := l.input[l.pos : l.pos+end]
	for i := 0; i < end+len(closer); i++ {
		l.advance()
	}

	// Lua drops exactly one newline immediately after the opening bracket;
	// a \r\n or \n\r pair counts as one.
	switch {
	case strings.HasPrefix(content, "\r\n"), strings.HasPrefix(content, "\n\r"):
		content = content[2:]
	case strings.HasPrefix(content, "\n"), strings.HasPrefix(content, "\r"):
		content = content[1:]
	}

	return Token{Type: TokenString, Value: content, Pos: startPos}
}

// scanNumber scans an integer or float.
func (l *Lexer) scanNumber() Token {
	startPos := l.currentPos()
	start := l.pos

	if l.peek() == '-' {
		l.advance()
	}

	for l.pos < len(l.input) && isDigit(l.peek()) {
		l.advance()
	}

	isFloat := false

	if l.pos < len(l.input) && l.peek() == '.' {
		isFloat = true
		l.advance()
		for l.pos < len(l.input) && isDigit(l.peek()) {
			l.advance()
		}
	}

	if l.pos < len(l.input) && (l.peek() == 'e' || l.peek() == 'E') {
		isFloat = true
		l.advance()
		if l.pos < len(l.input) && (l.peek() == '+' || l.peek() == '-') {
			l.advance()
		}
		for l.pos < len(l.input) && isDigit(l.peek()) {
			l.advance()
		}
	}

	value := l.input[start:l.pos]
	if value == "-" || value == "." || value == "-." {
		l.err = &ParseError{Message: fmt.Sprintf("malformed number %q", value), Pos: startPos}
		return Token{Type: TokenError, Value: value, Pos: startPos}
	}

	if isFloat {
		return Token{Type: TokenFloat, Value: value, Pos: startPos}
	}
	return Token{Type: TokenInt, Value: value, Pos: startPos}
}

// scanIdentOrKeyword scans an identifier or keyword.
func (l *Lexer) scanIdentOrKeyword() Token {
	startPos := l.currentPos()
	start := l.pos

	for l.pos < len(l.input) && isIdentContinue(l.peek()) {
		l.advance()
	}

	value := l.input[start:l.pos]

	switch value {
	case "nil":
		return Token{Type: TokenNil, Value: value, Pos: startPos}
	case "true":
		return Token{Type: TokenTrue, Value: value, Pos: startPos}
	case "false":
		return Token{Type: TokenFalse, Value: value, Pos: startPos}
	}

	return Token{Type: TokenIdent, Value: value, Pos: startPos}
}

// skipWhitespaceAndComments skips whitespace, -- comments, and --[[ ]]
// long comments.
func (l *Lexer) skipWhitespaceAndComments() *ParseError {
	for l.pos < len(l.input) {
		ch := l.peek()

		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.advance()
			continue
		}

		if ch == '-' && l.peekAt(1) == '-' {
			commentPos := l.currentPos()
			l.advance()
			l.advance()

			// Long comment --[[ ... ]] or --[=[ ... ]=]
			if l.pos < len(l.input) && l.peek() == '[' {
				probe := l.pos + 1
				level := 0
				for probe < len(l.input) && l.input[probe] == '=' {
					level++
					probe++
				}
				if probe < len(l.input) && l.input[probe] == '[' {
					closer := "]" + strings.Repeat("=", level) + "]"
					end := strings.Index(l.input[probe+1:], closer)
					if end < 0 {
						return &ParseError{Message: "unterminated long comment", Pos: commentPos}
					}
					skip := (probe + 1 + end + len(closer)) - l.pos
					for i := 0; i < skip; i++ {
						l.advance()
					}
					continue
				}
			}

			// Single-line comment
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}

		break
	}
	return nil
}

// Helper methods

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) currentPos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// Character classification

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// TokenStream provides a stream interface over tokens.
type TokenStream struct {
	tokens []Token
	pos    int
}

// NewTokenStream creates a token stream from tokens.
func NewTokenStream(tokens []Token) *TokenStream {
	return &TokenStream{tokens: tokens, pos: 0}
}

// Peek returns the current token without advancing.
func (ts *TokenStream) Peek() Token {
	if ts.pos >= len(ts.tokens) {
		return Token{Type: TokenEOF}
	}
	return ts.tokens[ts.pos]
}

// PeekN returns the token N positions ahead.
func (ts *TokenStream) PeekN(n int) Token {
	idx := ts.pos + n
	if idx >= len(ts.tokens) {
		return Token{Type: TokenEOF}
	}
	return ts.tokens[idx]
}

// Advance moves to the next token and returns the current one.
func (ts *TokenStream) Advance() Token {
	tok := ts.Peek()
	if ts.pos < len(ts.tokens) {
		ts.pos++
	}
	return tok
}

// Expect advances if the current token matches, otherwise returns an error.
func (ts *TokenStream) Expect(typ TokenType) (Token, *ParseError) {
	tok := ts.Peek()
	if tok.Type != typ {
		return tok, &ParseError{
			Message: fmt.Sprintf("expected %s, got %s", typ, tok.Type),
			Pos:     tok.Pos,
		}
	}
	ts.Advance()
	return tok, nil
}

// Match returns true and advances if the current token matches.
func (ts *TokenStream) Match(typ TokenType) bool {
	if ts.Peek().Type == typ {
		ts.Advance()
		return true
	}
	return false
}

// AtEnd returns true if at end of stream.
func (ts *TokenStream) AtEnd() bool {
	return ts.Peek().Type == TokenEOF
}
