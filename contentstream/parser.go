package contentstream

import (
	"bytes"
	"fmt"

	"github.com/tsawler/pagevisuals/core"
)

// Operation is one content stream operator with the operands preceding it.
// Inline images arrive as a single "BI" operation whose operands are the
// image dictionary (keys expanded to their full names) and the raw image
// data as a core.String.
type Operation struct {
	Operator string
	Operands []core.Object
}

// Parser turns content stream bytes into operations. Each Parser keeps its
// own operand stack.
type Parser struct {
	p        *core.Parser
	data     []byte
	ops      []Operation
	operands []core.Object
	firstErr error
}

// NewParser creates a parser over decoded content stream data.
func NewParser(data []byte) *Parser {
	p := core.NewParser(data)
	p.DisableReferences()
	return &Parser{p: p, data: data}
}

// Parse returns every operation it could recover. Malformed tokens are
// skipped and their pending operands discarded; the first such problem is
// returned as the error alongside the recovered operations.
func (p *Parser) Parse() ([]Operation, error) {
	lex := p.p.Lexer()
	for {
		tok, err := lex.NextToken()
		if err != nil {
			p.fail(err)
			continue
		}
		switch tok.Type {
		case core.TokenEOF:
			return p.ops, p.firstErr
		case core.TokenComment:
			continue
		case core.TokenKeyword, core.TokenIndirectRef:
			op := string(tok.Value)
			switch op {
			case "true", "false", "null":
				p.push(tok)
				continue
			case "BI":
				p.inlineImage()
				continue
			}
			p.ops = append(p.ops, Operation{Operator: op, Operands: p.operands})
			p.operands = nil
		default:
			p.push(tok)
		}
	}
}

func (p *Parser) push(tok core.Token) {
	p.p.Seek(tok.Pos)
	obj, err := p.p.ParseObject()
	if err != nil {
		p.fail(err)
		return
	}
	p.operands = append(p.operands, obj)
}

func (p *Parser) fail(err error) {
	if p.firstErr == nil {
		p.firstErr = err
	}
	p.operands = nil
}

var inlineKeys = map[string]string{
	"BPC": "BitsPerComponent",
	"CS":  "ColorSpace",
	"D":   "Decode",
	"DP":  "DecodeParms",
	"F":   "Filter",
	"H":   "Height",
	"IM":  "ImageMask",
	"I":   "Interpolate",
	"L":   "Length",
	"W":   "Width",
}

var inlineNames = map[core.Name]core.Name{
	"G":    "DeviceGray",
	"RGB":  "DeviceRGB",
	"CMYK": "DeviceCMYK",
	"I":    "Indexed",
	"AHx":  "ASCIIHexDecode",
	"A85":  "ASCII85Decode",
	"LZW":  "LZWDecode",
	"Fl":   "FlateDecode",
	"RL":   "RunLengthDecode",
	"CCF":  "CCITTFaxDecode",
	"DCT":  "DCTDecode",
}

func expandInline(obj core.Object) core.Object {
	switch v := obj.(type) {
	case core.Name:
		if full, ok := inlineNames[v]; ok {
			return full
		}
	case core.Array:
		out := make(core.Array, len(v))
		for i, item := range v {
			out[i] = expandInline(item)
		}
		return out
	}
	return obj
}

// inlineImage consumes "key value ... ID <data> EI" after BI.
func (p *Parser) inlineImage() {
	lex := p.p.Lexer()
	dict := core.Dict{}
	for {
		tok, err := lex.NextToken()
		if err != nil {
			p.fail(err)
			return
		}
		if tok.Type == core.TokenEOF {
			p.fail(fmt.Errorf("inline image at offset %d has no ID", tok.Pos))
			return
		}
		if tok.Type == core.TokenKeyword && string(tok.Value) == "ID" {
			break
		}
		if tok.Type != core.TokenName {
			p.fail(fmt.Errorf("inline image key expected at offset %d", tok.Pos))
			return
		}
		val, err := p.p.ParseObject()
		if err != nil {
			p.fail(err)
			return
		}
		key := string(tok.Value)
		if full, ok := inlineKeys[key]; ok {
			key = full
		}
		dict[key] = expandInline(val)
	}

	// a single whitespace byte separates ID from the data
	start := lex.Pos() + 1
	if start > len(p.data) {
		start = len(p.data)
	}
	end, next := p.findEI(start, dict)
	p.ops = append(p.ops, Operation{
		Operator: "BI",
		Operands: []core.Object{dict, core.String(p.data[start:end])},
	})
	p.operands = nil
	lex.Seek(next)
}

// findEI locates the end of inline image data starting at start. It returns
// the end of the data and the offset just past "EI".
func (p *Parser) findEI(start int, dict core.Dict) (int, int) {
	if n, ok := inlineLength(dict); ok && start+n <= len(p.data) {
		after := start + n
		rest := bytes.TrimLeft(p.data[after:], " \t\r\n\f\x00")
		if bytes.HasPrefix(rest, []byte("EI")) && endsToken(rest, 2) {
			eiPos := len(p.data) - len(rest)
			return after, eiPos + 2
		}
	}

	for i := start; i+1 < len(p.data); i++ {
		if p.data[i] != 'E' || p.data[i+1] != 'I' {
			continue
		}
		if i > start && !isSpace(p.data[i-1]) {
			continue
		}
		if !endsToken(p.data[i:], 2) {
			continue
		}
		end := i
		if end > start && isSpace(p.data[end-1]) {
			end--
		}
		return end, i + 2
	}
	return len(p.data), len(p.data)
}

// inlineLength returns the data length for unfiltered images or an explicit
// /Length.
func inlineLength(dict core.Dict) (int, bool) {
	if n, ok := dict.GetInt("Length"); ok && n >= 0 {
		return int(n), true
	}
	if dict.Has("Filter") {
		return 0, false
	}
	w, ok1 := dict.GetInt("Width")
	h, ok2 := dict.GetInt("Height")
	if !ok1 || !ok2 || w <= 0 || h <= 0 {
		return 0, false
	}
	bpc := 1
	comps := 1
	if mask, _ := dict.GetBool("ImageMask"); !mask {
		if v, ok := dict.GetInt("BitsPerComponent"); ok {
			bpc = int(v)
		}
		switch cs := dict.Get("ColorSpace").(type) {
		case core.Name:
			switch cs {
			case "DeviceRGB", "CalRGB":
				comps = 3
			case "DeviceCMYK":
				comps = 4
			}
		case core.Array:
			// indexed and other array spaces: one component per sample
		}
	}
	return int(h) * ((int(w)*comps*bpc + 7) / 8), true
}

func endsToken(b []byte, n int) bool {
	return len(b) == n || isSpace(b[n]) || bytes.IndexByte([]byte("()<>[]{}/%"), b[n]) >= 0
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f' || b == 0
}
