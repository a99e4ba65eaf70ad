package reader

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"

	"github.com/tsawler/pagevisuals/codec"
	"github.com/tsawler/pagevisuals/core"
	"github.com/tsawler/pagevisuals/pages"
)

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// headerSearch is how far into the file the %PDF- marker may appear.
const headerSearch = 1024

var versionPattern = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)

// Reader reads a PDF held in memory. Its exported methods are safe for
// concurrent use.
type Reader struct {
	mu sync.Mutex

	data     []byte
	xref     *core.XRefTable
	trailer  core.Dict
	version  PDFVersion
	repaired bool

	objCache  map[int]core.Object
	objStms   map[int]*core.ObjectStream
	resolving map[int]bool

	pageList []*pages.Page
	content  map[int]*pageContent
	decoded  map[core.IndirectRef]decodedImage

	codec *codec.Codec
}

// NewReader parses the header and cross-reference data of a PDF. Damaged
// or missing cross-reference data is rebuilt by scanning the file.
func NewReader(data []byte) (*Reader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	r := &Reader{
		data:      data,
		objCache:  make(map[int]core.Object),
		objStms:   make(map[int]*core.ObjectStream),
		resolving: make(map[int]bool),
		content:   make(map[int]*pageContent),
		decoded:   make(map[core.IndirectRef]decodedImage),
		codec:     codec.New(),
	}

	version, err := parseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	r.version = version

	xref, err := core.NewXRefParser(data).Load()
	if err != nil {
		if xref, err = r.reconstruct(); err != nil {
			return nil, fmt.Errorf("failed to load xref: %w", err)
		}
	}
	r.xref = xref
	r.trailer = xref.Trailer

	if _, err := r.catalog(); err != nil {
		if r.repaired {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		xref, rerr := r.reconstruct()
		if rerr != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		r.xref = xref
		r.trailer = xref.Trailer
		if _, err := r.catalog(); err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}
	return r, nil
}

// Open reads a PDF file and returns a Reader
func Open(filename string) (*Reader, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return NewReader(data)
}

func (r *Reader) reconstruct() (*core.XRefTable, error) {
	r.repaired = true
	r.objCache = make(map[int]core.Object)
	r.objStms = make(map[int]*core.ObjectStream)
	return core.Reconstruct(r.data)
}

// parseHeader finds %PDF-x.y near the start of the file.
func parseHeader(data []byte) (PDFVersion, error) {
	head := data
	if len(head) > headerSearch {
		head = head[:headerSearch]
	}
	m := versionPattern.FindSubmatch(head)
	if m == nil {
		if bytes.HasPrefix(data, []byte("%PDF")) {
			return PDFVersion{Major: 1, Minor: 4}, nil
		}
		return PDFVersion{}, fmt.Errorf("invalid PDF header")
	}
	major, _ := strconv.Atoi(string(m[1]))
	minor, _ := strconv.Atoi(string(m[2]))
	return PDFVersion{Major: major, Minor: minor}, nil
}

// Version returns the PDF version
func (r *Reader) Version() PDFVersion {
	return r.version
}

// Repaired reports whether the cross-reference data had to be rebuilt.
func (r *Reader) Repaired() bool {
	return r.repaired
}

// Trailer returns the trailer dictionary
func (r *Reader) Trailer() core.Dict {
	return r.trailer
}

// Size returns the document size in bytes.
func (r *Reader) Size() int {
	return len(r.data)
}

// GetObject loads an object by its number
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.object(objNum)
}

// Resolve resolves an object if it's an indirect reference, otherwise
// returns it as-is
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return objects{r}.Resolve(obj)
}

// object loads an object by number. Callers hold r.mu.
func (r *Reader) object(objNum int) (core.Object, error) {
	if obj, ok := r.objCache[objNum]; ok {
		return obj, nil
	}
	if r.resolving[objNum] {
		return nil, fmt.Errorf("object %d refers to itself", objNum)
	}
	r.resolving[objNum] = true
	defer delete(r.resolving, objNum)

	entry, ok := r.xref.Get(objNum)
	if !ok {
		return nil, fmt.Errorf("object %d not found in xref table", objNum)
	}

	var obj core.Object
	var err error
	switch entry.Type {
	case core.XRefInUse:
		obj, err = r.parseAt(objNum, entry.Offset)
	case core.XRefCompressed:
		obj, err = r.compressed(objNum, entry)
	default:
		return nil, fmt.Errorf("object %d is not in use", objNum)
	}
	if err != nil {
		return nil, err
	}
	r.objCache[objNum] = obj
	return obj, nil
}

func (r *Reader) parseAt(objNum int, offset int64) (core.Object, error) {
	if offset < 0 || offset >= int64(len(r.data)) {
		return nil, fmt.Errorf("object %d offset %d out of range", objNum, offset)
	}
	p := core.NewParser(r.data)
	p.SetReferenceResolver(objects{r})
	p.Seek(int(offset))
	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %d: %w", objNum, err)
	}
	if ind.Ref.Number != objNum {
		return nil, fmt.Errorf("object number mismatch: expected %d, got %d", objNum, ind.Ref.Number)
	}
	return ind.Object, nil
}

func (r *Reader) compressed(objNum int, entry *core.XRefEntry) (core.Object, error) {
	stm, ok := r.objStms[entry.StreamNumber]
	if !ok {
		obj, err := r.object(entry.StreamNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to load object stream %d: %w", entry.StreamNumber, err)
		}
		s, ok := obj.(*core.Stream)
		if !ok {
			return nil, fmt.Errorf("object stream %d is %T", entry.StreamNumber, obj)
		}
		if stm, err = core.NewObjectStream(s); err != nil {
			return nil, err
		}
		r.objStms[entry.StreamNumber] = stm
	}
	obj, err := stm.GetObjectByNumber(objNum, entry.Index)
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", objNum, err)
	}
	return obj, nil
}

// catalog returns the document catalog. Callers hold r.mu or have not yet
// shared the reader.
func (r *Reader) catalog() (core.Dict, error) {
	rootRef := r.trailer.Get("Root")
	if rootRef == nil {
		return nil, fmt.Errorf("trailer missing /Root entry")
	}
	obj, err := objects{r}.Resolve(rootRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog: %w", err)
	}
	catalog, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog is not a dictionary: %T", obj)
	}
	return catalog, nil
}

// GetCatalog returns the document catalog (root object)
func (r *Reader) GetCatalog() (core.Dict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.catalog()
}

// PageCount returns the number of pages in the PDF
func (r *Reader) PageCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.pages()
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// pages loads and caches the flattened page list. Callers hold r.mu.
func (r *Reader) pages() ([]*pages.Page, error) {
	if r.pageList != nil {
		return r.pageList, nil
	}
	catalog, err := r.catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	root, err := pages.NewCatalog(catalog, objects{r}).Pages()
	if err != nil {
		return nil, err
	}
	list, err := pages.NewPageTree(root, objects{r}).Pages()
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*pages.Page{}
	}
	r.pageList = list
	return list, nil
}

// page returns the page at index. Callers hold r.mu.
func (r *Reader) page(index int) (*pages.Page, error) {
	list, err := r.pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(list))
	}
	return list[index], nil
}

// objects is the reader's resolver for code that runs while r.mu is held.
type objects struct{ r *Reader }

func (o objects) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return o.r.object(ref.Number)
}

func (o objects) Resolve(obj core.Object) (core.Object, error) {
	for depth := 0; depth < 32; depth++ {
		ref, ok := obj.(core.IndirectRef)
		if !ok {
			return obj, nil
		}
		next, err := o.r.object(ref.Number)
		if err != nil {
			return nil, err
		}
		obj = next
	}
	return nil, fmt.Errorf("reference chain too long")
}

var (
	_ pages.ObjectResolver   = objects{}
	_ core.ReferenceResolver = objects{}
)
