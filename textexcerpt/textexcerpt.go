// Package textexcerpt extracts a bounded plain-text excerpt from a PDF, with
// page markers so a model can cite page numbers.
package textexcerpt

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxChars is the excerpt length used when none is configured.
const DefaultMaxChars = 20000

// FromBytes returns the excerpt for a PDF held in memory. Pages whose text
// cannot be extracted are treated as blank.
func FromBytes(content []byte, maxChars int) (string, error) {
	pages, err := PageTexts(content)
	if err != nil {
		return "", err
	}
	return Build(pages, maxChars), nil
}

// PageTexts returns the plain text of every page, in page order. A page that
// fails to extract yields "".
func PageTexts(content []byte) ([]string, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}
	r, err := open(content)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	texts := make([]string, r.NumPage())
	for i := range texts {
		texts[i] = pageText(r, i+1)
	}
	return texts, nil
}

func open(content []byte) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("pdf reader panic: %v", p)
		}
	}()
	return pdf.NewReader(bytes.NewReader(content), int64(len(content)))
}

// pageText extracts one page. The pdf package panics on some malformed
// content streams.
func pageText(r *pdf.Reader, num int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	page := r.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return norm.NFC.String(text)
}

// Build joins page texts into an excerpt of at most maxChars characters.
// Each non-blank page is preceded by a "--- Page N ---" marker and the text
// is cut mid-page when the limit is reached. maxChars <= 0 yields "".
func Build(pages []string, maxChars int) string {
	var b strings.Builder
	total := 0
	for i, txt := range pages {
		if strings.TrimSpace(txt) == "" {
			continue
		}
		remain := maxChars - total
		if remain <= 0 {
			break
		}
		add := fmt.Sprintf("\n\n--- Page %d ---\n", i+1) + txt
		n := utf8.RuneCountInString(add)
		if n > remain {
			b.WriteString(truncate(add, remain))
			break
		}
		b.WriteString(add)
		total += n
	}
	return strings.TrimSpace(b.String())
}

// truncate returns the first n runes of s.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
