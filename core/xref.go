package core

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
)

// XRefEntryType distinguishes free, in-file and compressed objects.
type XRefEntryType int

const (
	XRefFree XRefEntryType = iota
	XRefInUse
	XRefCompressed
)

// XRefEntry locates one object. In-use entries carry a byte Offset;
// compressed entries carry the object stream number and the index within it.
type XRefEntry struct {
	Type         XRefEntryType
	Offset       int64
	Generation   int
	StreamNumber int
	Index        int
}

// XRefTable maps object numbers to their locations and holds the trailer.
type XRefTable struct {
	Entries map[int]*XRefEntry
	Trailer Dict
}

// NewXRefTable creates an empty table.
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Entries: make(map[int]*XRefEntry),
		Trailer: make(Dict),
	}
}

func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	entry, ok := x.Entries[objNum]
	return entry, ok
}

func (x *XRefTable) Set(objNum int, entry *XRefEntry) {
	x.Entries[objNum] = entry
}

func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// XRefParser reads cross-reference sections from a whole-file buffer.
type XRefParser struct {
	data []byte
}

// NewXRefParser creates a parser over the complete document bytes.
func NewXRefParser(data []byte) *XRefParser {
	return &XRefParser{data: data}
}

// FindXRef returns the offset recorded after the last "startxref".
func (x *XRefParser) FindXRef() (int64, error) {
	tail := x.data
	if len(tail) > 4096 {
		tail = tail[len(tail)-4096:]
	}
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}
	l := NewLexer(tail[idx+len("startxref"):])
	tok, err := l.NextToken()
	if err != nil || tok.Type != TokenInteger {
		return 0, fmt.Errorf("invalid startxref offset")
	}
	offset, err := strconv.ParseInt(string(tok.Value), 10, 64)
	if err != nil || offset < 0 || offset >= int64(len(x.data)) {
		return 0, fmt.Errorf("startxref offset %q out of range", tok.Value)
	}
	return offset, nil
}

// ParseXRef parses the section at offset, which may be a classic table or a
// cross-reference stream.
func (x *XRefParser) ParseXRef(offset int64) (*XRefTable, error) {
	if offset < 0 || offset >= int64(len(x.data)) {
		return nil, fmt.Errorf("xref offset %d out of range", offset)
	}
	l := NewLexer(x.data)
	l.Seek(int(offset))
	l.SkipWhitespace()
	if bytes.HasPrefix(x.data[l.Pos():], []byte("xref")) {
		return x.parseTable(l.Pos())
	}
	return x.parseStream(l.Pos())
}

// parseTable parses "xref" subsections followed by "trailer <<...>>".
func (x *XRefParser) parseTable(pos int) (*XRefTable, error) {
	p := NewParser(x.data)
	p.Seek(pos + len("xref"))
	l := p.Lexer()
	table := NewXRefTable()

	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, fmt.Errorf("xref table: %w", err)
		}
		if tok.Type == TokenKeyword && string(tok.Value) == "trailer" {
			obj, err := p.ParseObject()
			if err != nil {
				return nil, fmt.Errorf("failed to parse trailer: %w", err)
			}
			trailer, ok := obj.(Dict)
			if !ok {
				return nil, fmt.Errorf("trailer is not a dictionary, got %T", obj)
			}
			table.Trailer = trailer
			return table, nil
		}
		if tok.Type != TokenInteger {
			return nil, fmt.Errorf("invalid xref subsection header at offset %d", tok.Pos)
		}
		countTok, err := l.NextToken()
		if err != nil || countTok.Type != TokenInteger {
			return nil, fmt.Errorf("invalid xref subsection count at offset %d", tok.Pos)
		}
		first, _ := strconv.Atoi(string(tok.Value))
		count, _ := strconv.Atoi(string(countTok.Value))

		for i := 0; i < count; i++ {
			entry, err := parseTableEntry(l)
			if err != nil {
				return nil, fmt.Errorf("xref entry %d: %w", first+i, err)
			}
			table.Set(first+i, entry)
		}
	}
}

// parseTableEntry reads "offset generation n|f".
func parseTableEntry(l *Lexer) (*XRefEntry, error) {
	offTok, err1 := l.NextToken()
	genTok, err2 := l.NextToken()
	flagTok, err3 := l.NextToken()
	if err1 != nil || err2 != nil || err3 != nil ||
		offTok.Type != TokenInteger || genTok.Type != TokenInteger || flagTok.Type != TokenKeyword {
		return nil, fmt.Errorf("malformed entry at offset %d", offTok.Pos)
	}
	offset, _ := strconv.ParseInt(string(offTok.Value), 10, 64)
	gen, _ := strconv.Atoi(string(genTok.Value))

	entry := &XRefEntry{Offset: offset, Generation: gen}
	switch string(flagTok.Value) {
	case "n":
		entry.Type = XRefInUse
	case "f":
		entry.Type = XRefFree
	default:
		return nil, fmt.Errorf("invalid in-use flag %q", flagTok.Value)
	}
	return entry, nil
}

// parseStream parses a /Type /XRef stream object at pos.
func (x *XRefParser) parseStream(pos int) (*XRefTable, error) {
	p := NewParser(x.data)
	p.Seek(pos)
	obj, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("xref stream: %w", err)
	}
	stream, ok := obj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("object at offset %d is not an xref stream", pos)
	}
	if t, _ := stream.Dict.GetName("Type"); t != "XRef" {
		return nil, fmt.Errorf("stream at offset %d has Type %v, want XRef", pos, stream.Dict.Get("Type"))
	}

	wArr, _ := stream.Dict.GetArray("W")
	w, ok := wArr.Numbers()
	if !ok || len(w) != 3 {
		return nil, fmt.Errorf("xref stream has invalid /W %v", stream.Dict.Get("W"))
	}
	widths := [3]int{int(w[0]), int(w[1]), int(w[2])}
	rowLen := widths[0] + widths[1] + widths[2]
	for _, n := range widths {
		if n < 0 || n > 8 {
			return nil, fmt.Errorf("xref stream field width %d out of range", n)
		}
	}
	if rowLen == 0 {
		return nil, fmt.Errorf("xref stream has zero-width rows")
	}

	size, _ := stream.Dict.GetInt("Size")
	var index []float64
	if idxArr, ok := stream.Dict.GetArray("Index"); ok {
		index, ok = idxArr.Numbers()
		if !ok || len(index)%2 != 0 {
			return nil, fmt.Errorf("xref stream has invalid /Index")
		}
	} else {
		index = []float64{0, float64(size)}
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("xref stream: %w", err)
	}

	table := NewXRefTable()
	table.Trailer = stream.Dict
	row := 0
	for i := 0; i < len(index); i += 2 {
		first, count := int(index[i]), int(index[i+1])
		for j := 0; j < count; j++ {
			start := row * rowLen
			if start+rowLen > len(data) {
				return table, nil
			}
			rec := data[start : start+rowLen]
			row++

			typ := int64(1)
			if widths[0] > 0 {
				typ = beUint(rec[:widths[0]])
			}
			f2 := beUint(rec[widths[0] : widths[0]+widths[1]])
			f3 := beUint(rec[widths[0]+widths[1]:])

			var entry *XRefEntry
			switch typ {
			case 0:
				entry = &XRefEntry{Type: XRefFree, Offset: f2, Generation: int(f3)}
			case 1:
				entry = &XRefEntry{Type: XRefInUse, Offset: f2, Generation: int(f3)}
			case 2:
				entry = &XRefEntry{Type: XRefCompressed, StreamNumber: int(f2), Index: int(f3)}
			default:
				// unknown types are treated as null references
				continue
			}
			table.Set(first+j, entry)
		}
	}
	return table, nil
}

func beUint(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

// Load reads the newest section and follows /Prev (and hybrid /XRefStm)
// links. Newer sections win; the trailer is the newest one, with /Root and
// /Info filled from older trailers if missing.
func (x *XRefParser) Load() (*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, err
	}

	merged := NewXRefTable()
	seen := make(map[int64]bool)
	for first := true; ; first = false {
		if seen[offset] {
			break
		}
		seen[offset] = true

		section, err := x.ParseXRef(offset)
		if err != nil {
			if first {
				return nil, err
			}
			break
		}

		if stmOff, ok := section.Trailer.GetInt("XRefStm"); ok && !seen[int64(stmOff)] {
			seen[int64(stmOff)] = true
			if stm, err := x.ParseXRef(int64(stmOff)); err == nil {
				for num, e := range stm.Entries {
					if cur, ok := section.Entries[num]; !ok || cur.Type == XRefFree {
						section.Entries[num] = e
					}
				}
			}
		}

		for num, e := range section.Entries {
			if _, ok := merged.Entries[num]; !ok {
				merged.Entries[num] = e
			}
		}
		for _, key := range []string{"Root", "Info", "Size", "ID"} {
			if !merged.Trailer.Has(key) && section.Trailer.Has(key) {
				merged.Trailer[key] = section.Trailer[key]
			}
		}

		prev, ok := section.Trailer.GetInt("Prev")
		if !ok {
			break
		}
		offset = int64(prev)
	}
	return merged, nil
}

// MergeXRefTables merges sections given oldest first; later entries win.
func MergeXRefTables(tables ...*XRefTable) *XRefTable {
	merged := NewXRefTable()
	for _, table := range tables {
		for num, entry := range table.Entries {
			merged.Set(num, entry)
		}
		for k, v := range table.Trailer {
			merged.Trailer[k] = v
		}
	}
	return merged
}

var objHeader = regexp.MustCompile(`(?m)(?:^|[\r\n\s])(\d+)\s+(\d+)\s+obj\b`)

// Reconstruct rebuilds a table by scanning for "N G obj" headers, used when
// the cross-reference data is missing or corrupt. Later definitions win.
// Objects inside object streams are indexed too, and /Root is recovered from
// the last trailer or, failing that, the last /Type /Catalog object.
func Reconstruct(data []byte) (*XRefTable, error) {
	table := NewXRefTable()
	var catalog *IndirectRef
	var objStreams []int

	for _, m := range objHeader.FindAllSubmatchIndex(data, -1) {
		num, err1 := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, err2 := strconv.Atoi(string(data[m[4]:m[5]]))
		if err1 != nil || err2 != nil {
			continue
		}
		table.Set(num, &XRefEntry{Type: XRefInUse, Offset: int64(m[2]), Generation: gen})

		p := NewParser(data)
		p.Seek(m[2])
		obj, err := p.ParseIndirectObject()
		if err != nil {
			continue
		}
		switch v := obj.Object.(type) {
		case Dict:
			if t, _ := v.GetName("Type"); t == "Catalog" {
				ref := obj.Ref
				catalog = &ref
			}
		case *Stream:
			if t, _ := v.Dict.GetName("Type"); t == "ObjStm" {
				objStreams = append(objStreams, num)
			}
		}
	}
	if table.Size() == 0 {
		return nil, fmt.Errorf("no objects found")
	}

	for _, sn := range objStreams {
		entry := table.Entries[sn]
		p := NewParser(data)
		p.Seek(int(entry.Offset))
		obj, err := p.ParseIndirectObject()
		if err != nil {
			continue
		}
		os, err := NewObjectStream(obj.Object.(*Stream))
		if err != nil {
			continue
		}
		nums, err := os.ObjectNumbers()
		if err != nil {
			continue
		}
		for i, n := range nums {
			if _, ok := table.Entries[n]; !ok {
				table.Set(n, &XRefEntry{Type: XRefCompressed, StreamNumber: sn, Index: i})
			}
			if catalog == nil {
				if d, ok := getCompressedDict(os, i); ok {
					if t, _ := d.GetName("Type"); t == "Catalog" {
						catalog = &IndirectRef{Number: n}
					}
				}
			}
		}
	}

	if idx := bytes.LastIndex(data, []byte("trailer")); idx >= 0 {
		p := NewParser(data)
		p.Seek(idx + len("trailer"))
		if obj, err := p.ParseObject(); err == nil {
			if d, ok := obj.(Dict); ok {
				table.Trailer = d
			}
		}
	}
	if _, ok := table.Trailer.GetIndirectRef("Root"); !ok {
		if catalog == nil {
			return nil, fmt.Errorf("document catalog not found")
		}
		table.Trailer["Root"] = *catalog
	}
	return table, nil
}

func getCompressedDict(os *ObjectStream, index int) (Dict, bool) {
	obj, _, err := os.GetObjectByIndex(index)
	if err != nil {
		return nil, false
	}
	d, ok := obj.(Dict)
	return d, ok
}
