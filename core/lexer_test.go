package core

import (
	"testing"
)

func lexAll(t *testing.T, input string) []Token {
	t.Helper()
	l := NewLexer([]byte(input))
	var toks []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("NextToken(%q) failed: %v", input, err)
		}
		if tok.Type == TokenEOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestLexerTokens(t *testing.T) {
	tests := []struct {
		input     string
		wantType  TokenType
		wantValue string
	}{
		{"123", TokenInteger, "123"},
		{"-42", TokenInteger, "-42"},
		{"+7", TokenInteger, "+7"},
		{"3.14", TokenReal, "3.14"},
		{".5", TokenReal, ".5"},
		{"-.002", TokenReal, "-.002"},
		{"4.", TokenReal, "4."},
		{"(hello)", TokenString, "hello"},
		{"(a (nested) b)", TokenString, "a (nested) b"},
		{`(esc\n\t\(\)\\)`, TokenString, "esc\n\t()\\"},
		{`(\101\102C)`, TokenString, "ABC"},
		{"(line\\\ncont)", TokenString, "linecont"},
		{"<48 65 6C>", TokenHexString, "48656C"},
		{"/Type", TokenName, "Type"},
		{"/A#20B", TokenName, "A B"},
		{"/", TokenName, ""},
		{"true", TokenKeyword, "true"},
		{"obj", TokenKeyword, "obj"},
		{"R", TokenIndirectRef, "R"},
		{"T*", TokenKeyword, "T*"},
		{"'", TokenKeyword, "'"},
		{`"`, TokenKeyword, `"`},
		{"d0", TokenKeyword, "d0"},
		{"[", TokenArrayStart, "["},
		{"]", TokenArrayEnd, "]"},
		{"<<", TokenDictStart, "<<"},
		{">>", TokenDictEnd, ">>"},
		{"% a comment", TokenComment, "% a comment"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := lexAll(t, tt.input)
			if len(toks) != 1 {
				t.Fatalf("got %d tokens, want 1: %+v", len(toks), toks)
			}
			if toks[0].Type != tt.wantType {
				t.Errorf("type = %v, want %v", toks[0].Type, tt.wantType)
			}
			if string(toks[0].Value) != tt.wantValue {
				t.Errorf("value = %q, want %q", toks[0].Value, tt.wantValue)
			}
		})
	}
}

func TestLexerSequence(t *testing.T) {
	toks := lexAll(t, "<</Length 5 0 R>>[1 2.5/N(s)]")
	want := []TokenType{
		TokenDictStart, TokenName, TokenInteger, TokenInteger, TokenIndirectRef, TokenDictEnd,
		TokenArrayStart, TokenInteger, TokenReal, TokenName, TokenString, TokenArrayEnd,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i := range want {
		if toks[i].Type != want[i] {
			t.Errorf("token %d: type %v, want %v", i, toks[i].Type, want[i])
		}
	}
	if toks[1].Pos != 2 {
		t.Errorf("Pos of /Length = %d, want 2", toks[1].Pos)
	}
}

func TestLexerOperatorsAfterNumbers(t *testing.T) {
	toks := lexAll(t, "0 0 100 50 re f*")
	if len(toks) != 6 {
		t.Fatalf("got %d tokens", len(toks))
	}
	if string(toks[4].Value) != "re" || string(toks[5].Value) != "f*" {
		t.Errorf("operators = %q %q", toks[4].Value, toks[5].Value)
	}
}

func TestLexerErrors(t *testing.T) {
	for _, input := range []string{"(unterminated", "<4G>", "<48", ">", ")"} {
		t.Run(input, func(t *testing.T) {
			l := NewLexer([]byte(input))
			if _, err := l.NextToken(); err == nil {
				t.Errorf("expected error for %q", input)
			}
		})
	}
}

func TestLexerSeekAndRead(t *testing.T) {
	l := NewLexer([]byte("stream\r\nDATA endstream"))
	tok, _ := l.NextToken()
	if string(tok.Value) != "stream" {
		t.Fatalf("got %q", tok.Value)
	}
	l.SkipEOL()
	if got := string(l.ReadBytes(4)); got != "DATA" {
		t.Errorf("ReadBytes = %q", got)
	}
	if i := l.IndexFrom([]byte("endstream")); i != 13 {
		t.Errorf("IndexFrom = %d, want 13", i)
	}
	l.Seek(-5)
	if l.Pos() != 0 {
		t.Errorf("Seek clamps to 0, got %d", l.Pos())
	}
	l.Seek(1000)
	if got := l.ReadBytes(3); len(got) != 0 {
		t.Errorf("ReadBytes at end = %q", got)
	}
}

func TestNumberKind(t *testing.T) {
	tests := []struct {
		in   string
		want TokenType
	}{
		{"12", TokenInteger},
		{"--5", TokenInteger},
		{"1.2", TokenReal},
		{"1.2.3", TokenKeyword},
		{"-", TokenKeyword},
		{".", TokenKeyword},
		{"1a", TokenKeyword},
	}
	for _, tt := range tests {
		if got := numberKind([]byte(tt.in)); got != tt.want {
			t.Errorf("numberKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
