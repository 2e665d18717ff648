package gemtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentRendersLineTypes(t *testing.T) {
	var doc Document
	doc.Heading(1, "Title").
		Blank().
		Text("hello").
		Link("/game", "Games").
		Link("gemini://example.org/", "").
		Item("one").
		Quote("said\ntwice").
		Preformatted("board", "X | O\n")

	want := "# Title\n" +
		"\n" +
		"hello\n" +
		"=> /game Games\n" +
		"=> gemini://example.org/\n" +
		"* one\n" +
		"> said\n" +
		"> twice\n" +
		"```board\n" +
		"X | O\n" +
		"```\n"
	assert.Equal(t, want, doc.String())
}

func TestHeadingLevelClamped(t *testing.T) {
	var doc Document
	doc.Heading(0, "a").Heading(7, "b")
	assert.Equal(t, "# a\n### b\n", doc.String())
}

func TestTextCannotInjectLines(t *testing.T) {
	var doc Document
	doc.Text("line one\r\n=> /evil link")
	assert.Equal(t, "line one => /evil link\n", doc.String())
}

func TestPreformattedEscapesToggle(t *testing.T) {
	var doc Document
	doc.Preformatted("", "```\nbody")
	assert.Equal(t, "```\n ```\nbody\n```\n", doc.String())
}

func TestEmptyDocument(t *testing.T) {
	var doc Document
	assert.Equal(t, "", doc.String())
	assert.Empty(t, doc.Bytes())
}
