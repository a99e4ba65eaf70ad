package core

import (
	"fmt"
)

// ObjectStream is a decoded /Type /ObjStm stream holding compressed objects.
type ObjectStream struct {
	stream  *Stream
	n       int
	first   int
	extends *IndirectRef
	offsets []objectStreamOffset
	objects map[int]Object
	decoded []byte
}

type objectStreamOffset struct {
	ObjNum int
	Offset int // relative to First
}

// NewObjectStream validates the stream dictionary. Decoding is deferred to
// the first lookup.
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if stream == nil {
		return nil, fmt.Errorf("stream is nil")
	}
	if t, _ := stream.Dict.GetName("Type"); t != "ObjStm" {
		return nil, fmt.Errorf("stream is not an object stream (Type %v)", stream.Dict.Get("Type"))
	}
	n, ok := stream.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream has invalid /N: %v", stream.Dict.Get("N"))
	}
	first, ok := stream.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream has invalid /First: %v", stream.Dict.Get("First"))
	}

	os := &ObjectStream{
		stream:  stream,
		n:       int(n),
		first:   int(first),
		objects: make(map[int]Object),
	}
	if ref, ok := stream.Dict.GetIndirectRef("Extends"); ok {
		os.extends = &ref
	}
	return os, nil
}

// N returns the number of objects declared in the stream.
func (os *ObjectStream) N() int { return os.n }

// Extends returns the object stream this one extends, or nil.
func (os *ObjectStream) Extends() *IndirectRef { return os.extends }

func (os *ObjectStream) decode() error {
	if os.decoded != nil {
		return nil
	}
	decoded, err := os.stream.Decode()
	if err != nil {
		return fmt.Errorf("failed to decode object stream: %w", err)
	}
	if os.first > len(decoded) {
		return fmt.Errorf("First offset (%d) exceeds decoded data length (%d)", os.first, len(decoded))
	}

	p := NewParser(decoded[:os.first])
	p.DisableReferences()
	offsets := make([]objectStreamOffset, 0, os.n)
	for i := 0; i < os.n; i++ {
		num, err1 := p.ParseObject()
		off, err2 := p.ParseObject()
		numInt, ok1 := num.(Int)
		offInt, ok2 := off.(Int)
		if err1 != nil || err2 != nil || !ok1 || !ok2 {
			return fmt.Errorf("object stream header entry %d is malformed", i)
		}
		offsets = append(offsets, objectStreamOffset{ObjNum: int(numInt), Offset: int(offInt)})
	}

	os.decoded = decoded
	os.offsets = offsets
	return nil
}

// GetObjectByIndex returns the object at header position index and its
// object number.
func (os *ObjectStream) GetObjectByIndex(index int) (Object, int, error) {
	if err := os.decode(); err != nil {
		return nil, 0, err
	}
	if index < 0 || index >= len(os.offsets) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", index, len(os.offsets))
	}
	entry := os.offsets[index]
	if obj, ok := os.objects[index]; ok {
		return obj, entry.ObjNum, nil
	}

	start := os.first + entry.Offset
	if start < os.first || start >= len(os.decoded) {
		return nil, 0, fmt.Errorf("object %d offset %d outside stream data", entry.ObjNum, start)
	}
	end := len(os.decoded)
	if index+1 < len(os.offsets) {
		if next := os.first + os.offsets[index+1].Offset; next > start && next < end {
			end = next
		}
	}

	obj, err := NewParser(os.decoded[start:end]).ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse object %d in object stream: %w", entry.ObjNum, err)
	}
	os.objects[index] = obj
	return obj, entry.ObjNum, nil
}

// GetObjectByNumber finds an object by number. hint is the index recorded in
// the cross-reference entry, checked first.
func (os *ObjectStream) GetObjectByNumber(objNum, hint int) (Object, error) {
	if err := os.decode(); err != nil {
		return nil, err
	}
	if hint >= 0 && hint < len(os.offsets) && os.offsets[hint].ObjNum == objNum {
		obj, _, err := os.GetObjectByIndex(hint)
		return obj, err
	}
	for i, entry := range os.offsets {
		if entry.ObjNum == objNum {
			obj, _, err := os.GetObjectByIndex(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("object %d not found in object stream", objNum)
}

// ObjectNumbers lists the object numbers stored in the stream.
func (os *ObjectStream) ObjectNumbers() ([]int, error) {
	if err := os.decode(); err != nil {
		return nil, err
	}
	nums := make([]int, len(os.offsets))
	for i, entry := range os.offsets {
		nums[i] = entry.ObjNum
	}
	return nums, nil
}
