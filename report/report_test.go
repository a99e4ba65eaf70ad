package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func render(t *testing.T, r Report) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, r))
	return buf.String()
}

func TestWrite(t *testing.T) {
	out := render(t, Report{
		Source:    "docs/a&b.pdf",
		Model:     "gpt-4o",
		Generated: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		QA: []QA{
			{Question: "What is <this>?", Answer: "It is **bold** on page 2."},
			{Question: "", Answer: ""},
		},
	})

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>PDF Analysis Report</title>")
	assert.Contains(t, out, "Source PDF: docs/a&amp;b.pdf<br/>Model: gpt-4o<br/>Generated: 2025-03-04 05:06:07")
	assert.Contains(t, out, "<h2>1) What is &lt;this&gt;?</h2>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<h2>2) (no question)</h2>")
	assert.Contains(t, out, "(no reply)")
	assert.Contains(t, out, "white-space: pre-wrap")
}

func TestWriteStructure(t *testing.T) {
	out := render(t, Report{QA: Pairs([]string{"a", "b", "c"}, []string{"x", "y"})})

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)

	var cards, answers int
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" {
			for _, a := range n.Attr {
				if a.Key == "class" && a.Val == "card" {
					cards++
				}
				if a.Key == "class" && a.Val == "answer" {
					answers++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	assert.Equal(t, 2, cards)
	assert.Equal(t, 2, answers)
}

func TestRawHTMLInAnswerIsDropped(t *testing.T) {
	out := render(t, Report{QA: []QA{{Question: "q", Answer: "<script>alert(1)</script>\n\nfine"}}})
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "fine")
}

func TestHeading(t *testing.T) {
	short := strings.Repeat("q", maxHeading)
	assert.Equal(t, short, heading(short))

	long := strings.Repeat("é", maxHeading+5)
	got := heading(long)
	assert.Equal(t, strings.Repeat("é", maxHeading)+"…", got)
}

func TestPairs(t *testing.T) {
	assert.Equal(t, []QA{{"a", "x"}}, Pairs([]string{"a"}, []string{"x", "y"}))
	assert.Empty(t, Pairs(nil, []string{"x"}))
}
