package luatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_BasicTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"123", []TokenType{TokenInt, TokenEOF}},
		{"-456", []TokenType{TokenInt, TokenEOF}},
		{"3.14", []TokenType{TokenFloat, TokenEOF}},
		{"-2.5e10", []TokenType{TokenFloat, TokenEOF}},
		{"0.42", []TokenType{TokenFloat, TokenEOF}},
		{"true", []TokenType{TokenTrue, TokenEOF}},
		{"false", []TokenType{TokenFalse, TokenEOF}},
		{"nil", []TokenType{TokenNil, TokenEOF}},
		{`"hello"`, []TokenType{TokenString, TokenEOF}},
		{`'hello'`, []TokenType{TokenString, TokenEOF}},
		{"[[hello]]", []TokenType{TokenString, TokenEOF}},
		{"doc_props", []TokenType{TokenIdent, TokenEOF}},
		{"{}", []TokenType{TokenLBrace, TokenRBrace, TokenEOF}},
		{"[1]", []TokenType{TokenLBracket, TokenInt, TokenRBracket, TokenEOF}},
		{"=", []TokenType{TokenEq, TokenEOF}},
		{",", []TokenType{TokenSep, TokenEOF}},
		{";", []TokenType{TokenSep, TokenEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewLexer(tt.input).Tokenize()
			require.NoError(t, err)
			require.Len(t, tokens, len(tt.expected))
			for i, tok := range tokens {
				assert.Equal(t, tt.expected[i], tok.Type, "token %d", i)
			}
		})
	}
}

func TestLexer_StringEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"newline", `"a\nb"`, "a\nb"},
		{"tab", `"a\tb"`, "a\tb"},
		{"carriage return", `"a\rb"`, "a\rb"},
		{"backslash", `"a\\b"`, `a\b`},
		{"double quote", `"a\"b"`, `a"b`},
		{"single quote escape", `'a\'b'`, "a'b"},
		{"double quote in single", `'a"b'`, `a"b`},
		{"decimal escape", `"a\10b"`, "a\nb"},
		{"three digit decimal", `"\226\128\148"`, "—"},
		{"line continuation", "\"a\\\nb\"", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer(tt.input).Tokenize()
			require.NoError(t, err)
			require.Equal(t, TokenString, tokens[0].Type)
			assert.Equal(t, tt.expected, tokens[0].Value)
		})
	}
}

func TestLexer_LongStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "[[hello world]]", "hello world"},
		{"leading newline stripped", "[[\nhello]]", "hello"},
		{"no escapes processed", `[[a\nb]]`, `a\nb`},
		{"leveled", "[==[a]]b]==]", "a]]b"},
		{"embedded closer of lower level", "[=[a]]=]", "a]"},
		{"crlf stripped as one newline", "[[\r\nhello]]", "hello"},
		{"lfcr stripped as one newline", "[[\n\rhello]]", "hello"},
		{"only one leading newline stripped", "[[\r\n\nhello]]", "\nhello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer(tt.input).Tokenize()
			require.NoError(t, err)
			require.Equal(t, TokenString, tokens[0].Type)
			assert.Equal(t, tt.expected, tokens[0].Value)
		})
	}
}

func TestLexer_Comments(t *testing.T) {
	input := `123 -- trailing comment
--[[ block
comment ]] 456 --[==[ leveled ]==] 789`
	tokens, err := NewLexer(input).Tokenize()
	require.NoError(t, err)

	require.Len(t, tokens, 4) // 3 ints + EOF
	assert.Equal(t, "123", tokens[0].Value)
	assert.Equal(t, "456", tokens[1].Value)
	assert.Equal(t, "789", tokens[2].Value)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `"abc`},
		{"newline in string", "\"abc\ndef\""},
		{"unterminated long string", "[[abc"},
		{"unterminated long comment", "--[[ abc"},
		{"lone dash", "- 1"},
		{"unexpected character", "@"},
		{"oversized decimal escape", `"\999"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.input).Tokenize()
			require.Error(t, err)
			pe, ok := AsParseError(err)
			require.True(t, ok, "expected *ParseError, got %T", err)
			assert.NotZero(t, pe.Pos.Line)
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	tokens, err := NewLexer("{\n    [1] = true,\n}").Tokenize()
	require.NoError(t, err)

	// Tokens: { [ 1 ] = true , } EOF
	require.Equal(t, TokenLBracket, tokens[1].Type)
	assert.Equal(t, 2, tokens[1].Pos.Line)
	assert.Equal(t, 5, tokens[1].Pos.Column)
}
