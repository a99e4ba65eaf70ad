// Package report writes question and answer sessions about a document as a
// static HTML page.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Title heads every report.
const Title = "PDF Analysis Report"

// maxHeading is the number of characters of a question shown in its heading.
const maxHeading = 160

const stylesheet = `
body { font-family: system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial; margin: 24px; line-height: 1.45; }
h1, h2 { margin: 0 0 8px; }
.meta { color: #666; font-size: 0.9rem; margin-bottom: 20px; }
.card { border: 1px solid #e5e7eb; border-radius: 10px; padding: 14px; margin: 12px 0; background: #fff; }
pre { white-space: pre-wrap; word-wrap: break-word; }
.answer { background: #f9fafb; border: 1px solid #e5e7eb; border-radius: 8px; padding: 12px; }
`

// QA is one question and the model's answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Pairs zips questions with answers. Items without a partner are dropped.
func Pairs(questions, answers []string) []QA {
	n := min(len(questions), len(answers))
	out := make([]QA, n)
	for i := range n {
		out[i] = QA{Question: questions[i], Answer: answers[i]}
	}
	return out
}

// Report is everything shown on the page.
type Report struct {
	Source    string
	Model     string
	Generated time.Time
	QA        []QA
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Write renders r as a complete HTML document. Answers are treated as
// Markdown; raw HTML inside them is not passed through.
func Write(w io.Writer, r Report) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, "lang", "en")
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, "charset", "utf-8"))
	head.AppendChild(withText(element(atom.Title), Title))
	head.AppendChild(element(atom.Meta, "name", "viewport", "content", "width=device-width, initial-scale=1"))
	head.AppendChild(withText(element(atom.Style), stylesheet))
	root.AppendChild(head)

	body := element(atom.Body)
	body.AppendChild(withText(element(atom.H1), Title))

	meta := element(atom.Div, "class", "meta")
	lines := []string{
		"Source PDF: " + r.Source,
		"Model: " + r.Model,
		"Generated: " + r.Generated.Format(time.DateTime),
	}
	for i, line := range lines {
		if i > 0 {
			meta.AppendChild(element(atom.Br))
		}
		meta.AppendChild(text(line))
	}
	body.AppendChild(meta)

	for i, qa := range r.QA {
		card, err := section(i+1, qa)
		if err != nil {
			return err
		}
		body.AppendChild(card)
	}
	root.AppendChild(body)

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func section(n int, qa QA) (*html.Node, error) {
	question := qa.Question
	if question == "" {
		question = "(no question)"
	}
	answer := qa.Answer
	if answer == "" {
		answer = "(no reply)"
	}

	card := element(atom.Div, "class", "card")
	card.AppendChild(withText(element(atom.H2), fmt.Sprintf("%d) %s", n, heading(question))))

	box := element(atom.Div, "class", "answer")
	nodes, err := renderMarkdown(answer, box)
	if err != nil {
		return nil, err
	}
	for _, c := range nodes {
		box.AppendChild(c)
	}
	card.AppendChild(box)
	return card, nil
}

// heading shortens a question to maxHeading characters, marking the cut.
func heading(q string) string {
	if utf8.RuneCountInString(q) <= maxHeading {
		return q
	}
	runes := []rune(q)
	return string(runes[:maxHeading]) + "…"
}

func renderMarkdown(src string, parent *html.Node) ([]*html.Node, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return nil, fmt.Errorf("convert answer: %w", err)
	}
	nodes, err := html.ParseFragment(strings.NewReader(buf.String()), parent)
	if err != nil {
		return nil, fmt.Errorf("parse answer: %w", err)
	}
	return nodes, nil
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(text(s))
	return n
}
