// Package gemtext builds text/gemini documents line by line.
package gemtext

import (
	"strings"
)

// MIMEType is the response meta for gemtext bodies
const MIMEType = "text/gemini; charset=utf-8"

// Document accumulates gemtext lines. The zero value is ready to use.
type Document struct {
	lines []string
}

// Heading adds a heading line. Levels outside 1..3 are clamped.
func (d *Document) Heading(level int, text string) *Document {
	level = min(max(level, 1), 3)
	return d.add(strings.Repeat("#", level) + " " + oneLine(text))
}

// Text adds a plain text line
func (d *Document) Text(text string) *Document {
	return d.add(oneLine(text))
}

// Blank adds an empty line
func (d *Document) Blank() *Document {
	return d.add("")
}

// Link adds a link line; label may be empty
func (d *Document) Link(url, label string) *Document {
	line := "=> " + url
	if label != "" {
		line += " " + oneLine(label)
	}
	return d.add(line)
}

// Item adds an unordered list item
func (d *Document) Item(text string) *Document {
	return d.add("* " + oneLine(text))
}

// Quote adds one quote line per line of text
func (d *Document) Quote(text string) *Document {
	for _, line := range strings.Split(text, "\n") {
		d.add("> " + line)
	}
	return d
}

// Preformatted adds body verbatim between toggle lines. A body line that
// would itself toggle preformatting is indented by one space.
func (d *Document) Preformatted(alt, body string) *Document {
	d.add("```" + oneLine(alt))
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		if strings.HasPrefix(line, "```") {
			line = " " + line
		}
		d.add(line)
	}
	return d.add("```")
}

// Raw appends pre-rendered gemtext unchanged
func (d *Document) Raw(text string) *Document {
	return d.add(strings.TrimRight(text, "\n"))
}

// String renders the document with a trailing newline
func (d *Document) String() string {
	if len(d.lines) == 0 {
		return ""
	}
	return strings.Join(d.lines, "\n") + "\n"
}

// Bytes renders the document as a response body
func (d *Document) Bytes() []byte {
	return []byte(d.String())
}

func (d *Document) add(line string) *Document {
	d.lines = append(d.lines, line)
	return d
}

// oneLine keeps caller text from starting new gemtext lines
func oneLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.Fields(strings.NewReplacer("\r", " ", "\n", " ").Replace(s)), " ")
}
