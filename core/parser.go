package core

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// maxNesting bounds array/dictionary depth so hostile input cannot exhaust
// the stack.
const maxNesting = 256

// ReferenceResolver resolves indirect references, used for stream /Length
// values stored as separate objects.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser parses PDF objects from an in-memory buffer.
type Parser struct {
	lexer    *Lexer
	resolver ReferenceResolver
	noRefs   bool
	depth    int
}

// NewParser creates a parser positioned at the start of data.
func NewParser(data []byte) *Parser {
	return &Parser{lexer: NewLexer(data)}
}

// SetReferenceResolver sets the resolver used for indirect stream lengths.
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

// DisableReferences turns off "N G R" recognition. Content streams use the
// object syntax but never contain references, and a trailing R there would
// otherwise swallow operands.
func (p *Parser) DisableReferences() {
	p.noRefs = true
}

// Lexer exposes the underlying lexer for callers that mix raw reads with
// object parsing.
func (p *Parser) Lexer() *Lexer { return p.lexer }

// Pos returns the current byte offset.
func (p *Parser) Pos() int { return p.lexer.Pos() }

// Seek moves the parser to an absolute offset.
func (p *Parser) Seek(pos int) { p.lexer.Seek(pos) }

// next returns the next token, skipping comments.
func (p *Parser) next() (Token, error) {
	for {
		tok, err := p.lexer.NextToken()
		if err != nil || tok.Type != TokenComment {
			return tok, err
		}
	}
}

// ParseObject parses the next object. At end of input it returns io.EOF.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	return p.parseFrom(tok)
}

func (p *Parser) parseFrom(tok Token) (Object, error) {
	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF

	case TokenKeyword:
		switch string(tok.Value) {
		case "null":
			return Null{}, nil
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return nil, fmt.Errorf("unexpected keyword %q at offset %d", tok.Value, tok.Pos)

	case TokenInteger:
		return p.parseNumber(tok)

	case TokenReal:
		return parseReal(tok.Value), nil

	case TokenString:
		return String(tok.Value), nil

	case TokenHexString:
		digits := tok.Value
		if len(digits)%2 == 1 {
			digits = append(append([]byte(nil), digits...), '0')
		}
		out := make([]byte, len(digits)/2)
		if _, err := hex.Decode(out, digits); err != nil {
			return nil, fmt.Errorf("invalid hex string at offset %d: %w", tok.Pos, err)
		}
		return String(out), nil

	case TokenName:
		return Name(tok.Value), nil

	case TokenArrayStart:
		return p.parseArray(tok.Pos)

	case TokenDictStart:
		return p.parseDict(tok.Pos)
	}
	return nil, fmt.Errorf("unexpected token %q at offset %d", tok.Value, tok.Pos)
}

// parseNumber parses an integer or, by looking two tokens ahead, an
// indirect reference "num gen R".
func (p *Parser) parseNumber(tok Token) (Object, error) {
	n, err := strconv.ParseInt(trimSigns(tok.Value), 10, 64)
	if err != nil {
		return parseReal(tok.Value), nil
	}
	if p.noRefs || n < 0 {
		return Int(n), nil
	}

	save := p.lexer.Pos()
	gen, err := p.lexer.NextToken()
	if err == nil && gen.Type == TokenInteger {
		r, err := p.lexer.NextToken()
		if err == nil && r.Type == TokenIndirectRef {
			g, _ := strconv.Atoi(string(gen.Value))
			return IndirectRef{Number: int(n), Generation: g}, nil
		}
	}
	p.lexer.Seek(save)
	return Int(n), nil
}

// trimSigns collapses a run of leading signs to the last one.
func trimSigns(b []byte) string {
	i := 0
	for i+1 < len(b) && (b[i] == '+' || b[i] == '-') && (b[i+1] == '+' || b[i+1] == '-') {
		i++
	}
	return string(b[i:])
}

func parseReal(b []byte) Real {
	f, err := strconv.ParseFloat(trimSigns(b), 64)
	if err != nil {
		return 0
	}
	return Real(f)
}

func (p *Parser) enter(pos int) error {
	p.depth++
	if p.depth > maxNesting {
		return fmt.Errorf("objects nested too deeply at offset %d", pos)
	}
	return nil
}

func (p *Parser) parseArray(start int) (Object, error) {
	if err := p.enter(start); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	arr := Array{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case TokenArrayEnd:
			return arr, nil
		case TokenEOF:
			return nil, fmt.Errorf("unterminated array starting at offset %d", start)
		}
		obj, err := p.parseFrom(tok)
		if err != nil {
			return nil, fmt.Errorf("array element: %w", err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict(start int) (Object, error) {
	if err := p.enter(start); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	dict := Dict{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case TokenDictEnd:
			return dict, nil
		case TokenEOF:
			return nil, fmt.Errorf("unterminated dictionary starting at offset %d", start)
		case TokenName:
		default:
			return nil, fmt.Errorf("expected name for dictionary key at offset %d, got %q", tok.Pos, tok.Value)
		}
		key := string(tok.Value)

		valTok, err := p.next()
		if err != nil {
			return nil, err
		}
		if valTok.Type == TokenDictEnd {
			// key without value; treat as null and finish
			return dict, nil
		}
		value, err := p.parseFrom(valTok)
		if err != nil {
			return nil, fmt.Errorf("dictionary value for /%s: %w", key, err)
		}
		if _, isNull := value.(Null); !isNull {
			dict[key] = value
		}
	}
}

// ParseIndirectObject parses "num gen obj <object> [stream ... endstream] endobj".
// A missing endobj is tolerated.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	numTok, err := p.next()
	if err != nil {
		return nil, err
	}
	genTok, err := p.next()
	if err != nil {
		return nil, err
	}
	objTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if numTok.Type != TokenInteger || genTok.Type != TokenInteger ||
		objTok.Type != TokenKeyword || string(objTok.Value) != "obj" {
		return nil, fmt.Errorf("expected object header at offset %d", numTok.Pos)
	}
	num, _ := strconv.Atoi(string(numTok.Value))
	gen, _ := strconv.Atoi(string(genTok.Value))

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("object %d %d: %w", num, gen, err)
	}

	save := p.lexer.Pos()
	tok, err := p.next()
	if err == nil && tok.Type == TokenKeyword && string(tok.Value) == "stream" {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("object %d %d: stream must follow a dictionary", num, gen)
		}
		stream, err := p.parseStream(dict)
		if err != nil {
			return nil, fmt.Errorf("object %d %d: %w", num, gen, err)
		}
		obj = stream
		save = p.lexer.Pos()
		tok, err = p.next()
	}
	if err != nil || tok.Type != TokenKeyword || string(tok.Value) != "endobj" {
		p.lexer.Seek(save)
	}

	return &IndirectObject{
		Ref:    IndirectRef{Number: num, Generation: gen},
		Object: obj,
	}, nil
}

var (
	kwEndstream = []byte("endstream")
	errNoLength = errors.New("stream length unavailable")
)

// parseStream reads stream data after the "stream" keyword. /Length is
// trusted when "endstream" follows it; otherwise the data runs to the next
// "endstream".
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	l := p.lexer
	// some writers put spaces before the EOL
	for l.pos < len(l.data) && (l.data[l.pos] == ' ' || l.data[l.pos] == '\t') {
		l.pos++
	}
	l.SkipEOL()
	start := l.Pos()

	if length, err := p.streamLength(dict); err == nil && length >= 0 && start+length <= len(l.data) {
		end := start + length
		rest := bytes.TrimLeft(l.data[end:min(end+32, len(l.data))], " \t\r\n\f\x00")
		if bytes.HasPrefix(rest, kwEndstream) {
			data := l.data[start:end]
			l.Seek(end)
			l.SkipWhitespace()
			l.Seek(l.Pos() + len(kwEndstream))
			return &Stream{Dict: dict, Data: data}, nil
		}
	}

	end := l.IndexFrom(kwEndstream)
	if end < 0 {
		return nil, fmt.Errorf("stream starting at offset %d has no endstream", start)
	}
	dataEnd := end
	if dataEnd > start && l.data[dataEnd-1] == '\n' {
		dataEnd--
	}
	if dataEnd > start && l.data[dataEnd-1] == '\r' {
		dataEnd--
	}
	data := l.data[start:dataEnd]
	l.Seek(end + len(kwEndstream))
	return &Stream{Dict: dict, Data: data}, nil
}

func (p *Parser) streamLength(dict Dict) (int, error) {
	switch v := dict.Get("Length").(type) {
	case Int:
		return int(v), nil
	case IndirectRef:
		if p.resolver == nil {
			return 0, errNoLength
		}
		resolved, err := p.resolver.ResolveReference(v)
		if err != nil {
			return 0, err
		}
		if n, ok := resolved.(Int); ok {
			return int(n), nil
		}
	}
	return 0, errNoLength
}
