package core

import (
	"bytes"
	"fmt"
)

// TokenType is the lexical class of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenComment
	TokenKeyword     // true, false, null, obj, endobj, stream, content operators
	TokenInteger     // 123
	TokenReal        // 3.14
	TokenString      // (hello)
	TokenHexString   // <48656C6C6F>
	TokenName        // /Type
	TokenArrayStart  // [
	TokenArrayEnd    // ]
	TokenDictStart   // <<
	TokenDictEnd     // >>
	TokenIndirectRef // R
)

// Token is one lexical token. Value holds the decoded bytes of strings and
// names, the hex digits of hex strings and the literal text of everything
// else. Pos is the byte offset of the token's first character.
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int
}

// Lexer tokenizes PDF syntax from an in-memory buffer.
type Lexer struct {
	data []byte
	pos  int
}

// NewLexer creates a lexer positioned at the start of data.
func NewLexer(data []byte) *Lexer {
	return &Lexer{data: data}
}

// Pos returns the current byte offset.
func (l *Lexer) Pos() int { return l.pos }

// Seek moves the lexer to an absolute offset, clamped to the buffer.
func (l *Lexer) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(l.data) {
		pos = len(l.data)
	}
	l.pos = pos
}

// Data returns the underlying buffer.
func (l *Lexer) Data() []byte { return l.data }

// NextToken returns the next non-whitespace token. Comments are returned
// as TokenComment so callers can decide to skip them.
func (l *Lexer) NextToken() (Token, error) {
	l.SkipWhitespace()
	if l.pos >= len(l.data) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	start := l.pos
	switch b := l.data[l.pos]; b {
	case '%':
		return l.readComment(), nil
	case '[':
		l.pos++
		return Token{Type: TokenArrayStart, Value: l.data[start:l.pos], Pos: start}, nil
	case ']':
		l.pos++
		return Token{Type: TokenArrayEnd, Value: l.data[start:l.pos], Pos: start}, nil
	case '{', '}':
		l.pos++
		return Token{Type: TokenKeyword, Value: l.data[start:l.pos], Pos: start}, nil
	case '(':
		return l.readString()
	case '<':
		if l.peekAt(1) == '<' {
			l.pos += 2
			return Token{Type: TokenDictStart, Value: l.data[start:l.pos], Pos: start}, nil
		}
		return l.readHexString()
	case '>':
		if l.peekAt(1) == '>' {
			l.pos += 2
			return Token{Type: TokenDictEnd, Value: l.data[start:l.pos], Pos: start}, nil
		}
		l.pos++
		return Token{}, fmt.Errorf("unexpected '>' at offset %d", start)
	case ')':
		l.pos++
		return Token{}, fmt.Errorf("unbalanced ')' at offset %d", start)
	case '/':
		return l.readName(), nil
	}

	return l.readRegular(), nil
}

// SkipWhitespace advances past PDF whitespace.
func (l *Lexer) SkipWhitespace() {
	for l.pos < len(l.data) && isWhitespace(l.data[l.pos]) {
		l.pos++
	}
}

// SkipEOL consumes a single CRLF, LF or CR at the current position.
func (l *Lexer) SkipEOL() {
	if l.pos < len(l.data) && l.data[l.pos] == '\r' {
		l.pos++
	}
	if l.pos < len(l.data) && l.data[l.pos] == '\n' {
		l.pos++
	}
}

// ReadBytes returns the next n bytes (fewer at end of data) and advances.
func (l *Lexer) ReadBytes(n int) []byte {
	end := l.pos + n
	if n < 0 || end > len(l.data) {
		end = len(l.data)
	}
	out := l.data[l.pos:end]
	l.pos = end
	return out
}

// IndexFrom returns the offset of the first occurrence of sep at or after
// the current position, or -1.
func (l *Lexer) IndexFrom(sep []byte) int {
	i := bytes.Index(l.data[l.pos:], sep)
	if i < 0 {
		return -1
	}
	return l.pos + i
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off < len(l.data) {
		return l.data[l.pos+off]
	}
	return 0
}

func (l *Lexer) readComment() Token {
	start := l.pos
	for l.pos < len(l.data) && l.data[l.pos] != '\r' && l.data[l.pos] != '\n' {
		l.pos++
	}
	return Token{Type: TokenComment, Value: l.data[start:l.pos], Pos: start}
}

// readString reads a literal string, resolving escapes and keeping balanced
// parentheses.
func (l *Lexer) readString() (Token, error) {
	start := l.pos
	l.pos++ // (
	var buf bytes.Buffer
	depth := 1

	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++
		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			depth--
			if depth == 0 {
				return Token{Type: TokenString, Value: buf.Bytes(), Pos: start}, nil
			}
			buf.WriteByte(b)
		case '\\':
			if l.pos >= len(l.data) {
				break
			}
			next := l.data[l.pos]
			l.pos++
			switch next {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				val := int(next - '0')
				for i := 0; i < 2 && l.pos < len(l.data) && isOctalDigit(l.data[l.pos]); i++ {
					val = val*8 + int(l.data[l.pos]-'0')
					l.pos++
				}
				buf.WriteByte(byte(val))
			default:
				buf.WriteByte(next)
			}
		default:
			buf.WriteByte(b)
		}
	}
	return Token{}, fmt.Errorf("unterminated string starting at offset %d", start)
}

func (l *Lexer) readHexString() (Token, error) {
	start := l.pos
	l.pos++ // <
	var buf bytes.Buffer
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++
		switch {
		case b == '>':
			return Token{Type: TokenHexString, Value: buf.Bytes(), Pos: start}, nil
		case isWhitespace(b):
		case isHexDigit(b):
			buf.WriteByte(b)
		default:
			return Token{}, fmt.Errorf("invalid hex digit %q at offset %d", b, l.pos-1)
		}
	}
	return Token{}, fmt.Errorf("unterminated hex string starting at offset %d", start)
}

// readName reads /Name, resolving #xx escapes.
func (l *Lexer) readName() Token {
	start := l.pos
	l.pos++ // /
	var buf bytes.Buffer
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.pos++
		if b == '#' && l.pos+1 < len(l.data) && isHexDigit(l.data[l.pos]) && isHexDigit(l.data[l.pos+1]) {
			buf.WriteByte(hexValue(l.data[l.pos])<<4 | hexValue(l.data[l.pos+1]))
			l.pos += 2
			continue
		}
		buf.WriteByte(b)
	}
	return Token{Type: TokenName, Value: buf.Bytes(), Pos: start}
}

// readRegular reads a run of regular characters and classifies it as a
// number or keyword. Content-stream operators such as ' " T* f* and d0
// come through here as keywords.
func (l *Lexer) readRegular() Token {
	start := l.pos
	for l.pos < len(l.data) && !isWhitespace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		// lone NUL-like byte that is neither whitespace nor delimiter cannot
		// happen, but never stall
		l.pos++
	}
	val := l.data[start:l.pos]

	switch numberKind(val) {
	case TokenInteger:
		return Token{Type: TokenInteger, Value: val, Pos: start}
	case TokenReal:
		return Token{Type: TokenReal, Value: val, Pos: start}
	}
	if len(val) == 1 && val[0] == 'R' {
		return Token{Type: TokenIndirectRef, Value: val, Pos: start}
	}
	return Token{Type: TokenKeyword, Value: val, Pos: start}
}

// numberKind reports whether b is an integer, a real, or neither
// (TokenKeyword). A leading run of signs is accepted, as some writers emit
// "--5".
func numberKind(b []byte) TokenType {
	i := 0
	for i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}
	digits, dots := 0, 0
	for ; i < len(b); i++ {
		switch {
		case isDigit(b[i]):
			digits++
		case b[i] == '.':
			dots++
		default:
			return TokenKeyword
		}
	}
	switch {
	case digits == 0 || dots > 1:
		return TokenKeyword
	case dots == 1:
		return TokenReal
	}
	return TokenInteger
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(b byte) bool      { return b >= '0' && b <= '9' }
func isOctalDigit(b byte) bool { return b >= '0' && b <= '7' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) byte {
	switch {
	case isDigit(b):
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
