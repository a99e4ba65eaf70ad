// Package pdftest builds small, well-formed PDF files for tests. Object
// offsets and cross-reference data are computed, so fixtures stay valid as
// they are edited.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sort"
	"strings"
)

// Builder collects numbered objects. Object numbers start at 1.
type Builder struct {
	objs []string
}

// New returns an empty builder.
func New() *Builder { return &Builder{} }

// Reserve allocates an object number to be filled later with Set.
func (b *Builder) Reserve() int {
	b.objs = append(b.objs, "null")
	return len(b.objs)
}

// Add appends an object body and returns its number.
func (b *Builder) Add(body string) int {
	b.objs = append(b.objs, body)
	return len(b.objs)
}

// Set replaces the body of object num.
func (b *Builder) Set(num int, body string) {
	b.objs[num-1] = body
}

// Stream formats a stream object body with the correct /Length. dict is the
// dictionary content without the surrounding << >>.
func Stream(dict string, data []byte) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// AddStream appends a stream object.
func (b *Builder) AddStream(dict string, data []byte) int {
	return b.Add(Stream(dict, data))
}

// AddFlateStream appends a FlateDecode-compressed stream object.
func (b *Builder) AddFlateStream(dict string, data []byte) int {
	return b.AddStream(strings.TrimSpace(dict+" /Filter /FlateDecode"), Deflate(data))
}

// Bytes renders the document with a classic xref table. root is the
// catalog's object number.
func (b *Builder) Bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(b.objs))
	for i, body := range b.objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(b.objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.objs)+1, root, xref)
	return buf.Bytes()
}

// BytesXRefStream renders the document with a cross-reference stream. The
// objects listed in compressed are stored in an object stream instead of
// the file body; they must not be streams themselves.
func (b *Builder) BytesXRefStream(root int, compressed ...int) []byte {
	inStm := make(map[int]int)
	sort.Ints(compressed)
	for i, n := range compressed {
		inStm[n] = i
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(b.objs)+1)
	for i, body := range b.objs {
		if _, ok := inStm[i+1]; ok {
			continue
		}
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	objStm := 0
	if len(compressed) > 0 {
		var header, body bytes.Buffer
		for _, n := range compressed {
			fmt.Fprintf(&header, "%d %d ", n, body.Len())
			body.WriteString(b.objs[n-1])
			body.WriteByte('\n')
		}
		objStm = len(b.objs) + 1
		offsets = append(offsets, buf.Len())
		data := append(header.Bytes(), body.Bytes()...)
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", objStm,
			Stream(fmt.Sprintf("/Type /ObjStm /N %d /First %d", len(compressed), header.Len()), data))
	}

	xrefNum := len(offsets)
	size := xrefNum + 1
	var rows bytes.Buffer
	row := func(typ byte, f2 uint32, f3 uint16) {
		rows.WriteByte(typ)
		binary.Write(&rows, binary.BigEndian, f2)
		binary.Write(&rows, binary.BigEndian, f3)
	}
	row(0, 0, 65535)
	for n := 1; n < xrefNum; n++ {
		if idx, ok := inStm[n]; ok {
			row(2, uint32(objStm), uint16(idx))
		} else {
			row(1, uint32(offsets[n]), 0)
		}
	}
	xref := buf.Len()
	row(1, uint32(xref), 0)

	fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", xrefNum,
		Stream(fmt.Sprintf("/Type /XRef /Size %d /W [1 4 2] /Root %d 0 R /Filter /FlateDecode", size, root), Deflate(rows.Bytes())))
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

// Page describes one page for Document.
type Page struct {
	MediaBox  string // defaults to "[0 0 612 792]"
	Resources string // resource dictionary body, e.g. "<< /XObject << /Im1 5 0 R >> >>"
	Content   string
}

// Document builds a document from pages, adding the catalog and page tree.
// extra objects can be added to b beforehand and referenced from Resources.
func (b *Builder) Document(pages ...Page) []byte {
	catalog := b.Reserve()
	tree := b.Reserve()
	var kids []string
	for _, pg := range pages {
		content := b.AddStream("", []byte(pg.Content))
		mb := pg.MediaBox
		if mb == "" {
			mb = "[0 0 612 792]"
		}
		res := pg.Resources
		if res == "" {
			res = "<< >>"
		}
		n := b.Add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox %s /Resources %s /Contents %d 0 R >>", tree, mb, res, content))
		kids = append(kids, fmt.Sprintf("%d 0 R", n))
	}
	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", tree))
	b.Set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	return b.Bytes(catalog)
}

// Deflate zlib-compresses data.
func Deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// Gradient returns a w x h RGBA image with varying colour, so encoders
// cannot collapse it.
func Gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(1, w-1)), G: uint8(y * 255 / max(1, h-1)), B: 128, A: 255})
		}
	}
	return img
}

// JPEG returns a w x h baseline JPEG.
func JPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, Gradient(w, h), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

// PNG returns a w x h PNG.
func PNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, Gradient(w, h))
	return buf.Bytes()
}

// RGBSamples returns raw 8-bit RGB samples for a w x h image.
func RGBSamples(w, h int) []byte {
	img := Gradient(w, h)
	out := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.RGBAAt(x, y)
			out = append(out, c.R, c.G, c.B)
		}
	}
	return out
}
