// Package assemble groups extracted visuals by page and builds the
// multimodal user message that carries them to a model.
package assemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tsawler/pagevisuals/llm"
	"github.com/tsawler/pagevisuals/model"
)

// Page holds one page's visuals. Page is 0-based.
type Page struct {
	Page   int
	Images []model.Blob
	Clips  []model.Blob
}

// ByPage groups images and clips by page in ascending page order. Within a
// page, blobs keep the order they were given in.
func ByPage(images []model.EmbeddedImage, clips []model.VectorClip) []Page {
	index := make(map[int]*Page)
	get := func(page int) *Page {
		p, ok := index[page]
		if !ok {
			p = &Page{Page: page}
			index[page] = p
		}
		return p
	}
	for _, img := range images {
		p := get(img.Page)
		p.Images = append(p.Images, img.Blob)
	}
	for _, c := range clips {
		p := get(c.Page)
		p.Clips = append(p.Clips, c.Blob)
	}

	out := make([]Page, 0, len(index))
	for _, p := range index {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out
}

// Label is the caption placed before a page's visuals, for example
// "Page 3 (2 embedded image(s), 1 vector clip(s)):". Counts of zero are left
// out.
func (p Page) Label() string {
	var bits []string
	if n := len(p.Images); n > 0 {
		bits = append(bits, fmt.Sprintf("%d embedded image(s)", n))
	}
	if n := len(p.Clips); n > 0 {
		bits = append(bits, fmt.Sprintf("%d vector clip(s)", n))
	}
	return fmt.Sprintf("Page %d (%s):", p.Page+1, strings.Join(bits, ", "))
}

// UserParts builds the first user message of a conversation: the
// instruction, the text excerpt when there is one, then each page's label
// followed by its images and clips as data URIs. Pages come from ByPage and
// are never empty.
func UserParts(instruction, excerpt string, pages []Page) []llm.Part {
	parts := []llm.Part{llm.TextPart(instruction)}
	if excerpt != "" {
		parts = append(parts, llm.TextPart("Extracted text excerpt (may be truncated):\n"+excerpt))
	}
	if len(pages) > 0 {
		parts = append(parts, llm.TextPart("Extracted visuals by page:"))
	}
	for _, p := range pages {
		parts = append(parts, llm.TextPart(p.Label()))
		for _, b := range p.Images {
			parts = append(parts, llm.ImagePart(b.DataURI(), llm.DetailAuto))
		}
		for _, b := range p.Clips {
			parts = append(parts, llm.ImagePart(b.DataURI(), llm.DetailAuto))
		}
	}
	return parts
}

// Seed returns a function suitable for llm.NewConversation that builds the
// first message from the question, the excerpt and the visuals.
func Seed(excerpt string, pages []Page) func(question string) []llm.Part {
	return func(question string) []llm.Part {
		return UserParts(question, excerpt, pages)
	}
}
