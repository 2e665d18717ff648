package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcoot/gemtofu/internal/api/response"
	"github.com/mcoot/gemtofu/internal/gemini"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	stdout io.Writer
	stderr io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, stdout, stderr io.Writer) *Output {
	return &Output{format: format, stdout: stdout, stderr: stderr}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(o.stderr, string(data))
	} else {
		fmt.Fprintf(o.stderr, "Error: %s\n", err)
	}
}

// FetchResult is a Gemini response as printed by fetch
type FetchResult struct {
	Status int    `json:"status"`
	Meta   string `json:"meta"`
	Body   string `json:"body"`
}

// FetchResultFrom converts a Gemini response
func FetchResultFrom(resp *gemini.Response) FetchResult {
	return FetchResult{
		Status: int(resp.Status),
		Meta:   resp.Meta,
		Body:   string(resp.Body),
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case FetchResult:
		o.printFetchResult(v)
	case response.Health:
		fmt.Fprintf(o.stdout, "Status: %s\n", v.Status)
	case response.GameList:
		o.printGameList(v)
	case response.Game:
		o.printGame(v)
	case response.Identity:
		fmt.Fprintf(o.stdout, "Identity: %s\n", v.Identity)
		fmt.Fprintf(o.stdout, "First seen: %s\n", v.FirstSeen.Format(time.RFC3339))
	case response.IdentityCount:
		fmt.Fprintf(o.stdout, "Trusted identities: %d\n", v.Count)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printFetchResult(r FetchResult) {
	fmt.Fprintf(o.stdout, "%d %s\n", r.Status, r.Meta)
	if r.Body != "" {
		fmt.Fprint(o.stdout, r.Body)
		if !strings.HasSuffix(r.Body, "\n") {
			fmt.Fprintln(o.stdout)
		}
	}
}

func (o *Output) printGameList(l response.GameList) {
	if len(l.Games) == 0 {
		fmt.Fprintln(o.stdout, "No games.")
		return
	}
	for _, g := range l.Games {
		fmt.Fprintf(o.stdout, "%s  %-8s  X:%s O:%s  %s\n",
			g.ID, g.Status, g.PlayerX, g.PlayerO, g.UpdatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printGame(g response.Game) {
	fmt.Fprintf(o.stdout, "Game: %s\n", g.ID)
	fmt.Fprintf(o.stdout, "Status: %s\n", g.Status)
	fmt.Fprintf(o.stdout, "X: %s\n", g.PlayerX)
	if g.PlayerO != nil {
		fmt.Fprintf(o.stdout, "O: %s\n", *g.PlayerO)
	} else {
		fmt.Fprintln(o.stdout, "O: (waiting)")
	}
	if g.Winner != nil {
		fmt.Fprintf(o.stdout, "Winner: %s\n", *g.Winner)
	} else if g.Status == "playing" {
		fmt.Fprintf(o.stdout, "Turn: %s\n", g.Turn)
	}
	fmt.Fprintln(o.stdout)
	o.printBoard(g.Board)
}

func (o *Output) printBoard(cells []string) {
	for row := 0; row*3 < len(cells); row++ {
		marks := make([]string, 0, 3)
		for col := 0; col < 3 && row*3+col < len(cells); col++ {
			cell := cells[row*3+col]
			if cell == "" {
				cell = "."
			}
			marks = append(marks, cell)
		}
		fmt.Fprintf(o.stdout, " %s\n", strings.Join(marks, " | "))
	}
}
