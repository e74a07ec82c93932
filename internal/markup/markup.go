// Package markup parses the line-oriented article body format into render
// blocks and a table of contents.
package markup

import (
	"fmt"
	"math"
	"strings"
)

// BlockKind identifies the kind of a rendered block.
type BlockKind string

const (
	KindHeading   BlockKind = "heading"
	KindBold      BlockKind = "bold"
	KindList      BlockKind = "list"
	KindParagraph BlockKind = "paragraph"
)

// wordsPerMinute drives ReadTime.
const wordsPerMinute = 200

// Block is one renderable unit of an article body.
type Block struct {
	Kind  BlockKind `json:"kind"`
	ID    string    `json:"id,omitempty"`
	Level int       `json:"level,omitempty"`
	Text  string    `json:"text,omitempty"`
	Items []string  `json:"items,omitempty"`
}

// TOCEntry links to a heading block.
type TOCEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Level int    `json:"level"`
}

// Document is the parsed form of an article body.
type Document struct {
	Blocks []Block    `json:"blocks"`
	TOC    []TOCEntry `json:"toc"`
}

// Parse splits content into blocks. Lines are trimmed; blank lines are
// skipped. Headings receive sequential ids heading-0, heading-1, ...
func Parse(content string) Document {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	doc := Document{Blocks: []Block{}, TOC: []TOCEntry{}}
	headings := 0

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if level, title, ok := heading(line); ok {
			id := fmt.Sprintf("heading-%d", headings)
			headings++
			doc.Blocks = append(doc.Blocks, Block{Kind: KindHeading, ID: id, Level: level, Text: title})
			doc.TOC = append(doc.TOC, TOCEntry{ID: id, Title: title, Level: level})
			continue
		}

		switch {
		case len(line) >= 4 && strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**"):
			doc.Blocks = append(doc.Blocks, Block{Kind: KindBold, Text: line[2 : len(line)-2]})

		case strings.HasPrefix(line, "- "):
			items := []string{line[2:]}
			for i+1 < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i+1]), "- ") {
				i++
				items = append(items, strings.TrimSpace(lines[i])[2:])
			}
			doc.Blocks = append(doc.Blocks, Block{Kind: KindList, Items: items})

		case line != "":
			doc.Blocks = append(doc.Blocks, Block{Kind: KindParagraph, Text: line})
		}
	}

	return doc
}

func heading(line string) (int, string, bool) {
	switch {
	case strings.HasPrefix(line, "# "):
		return 1, line[2:], true
	case strings.HasPrefix(line, "## "):
		return 2, line[3:], true
	case strings.HasPrefix(line, "### "):
		return 3, line[4:], true
	}
	return 0, "", false
}

// ReadTime estimates the reading time of content, e.g. "6 min read".
func ReadTime(content string) string {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
