package server

import (
	"context"
	"time"

	"github.com/mcoot/gemtofu/internal/gemini"
	"github.com/mcoot/gemtofu/internal/gemtext"
	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/static"
)

// IdentityLookup finds the ledger entry of an identity
type IdentityLookup interface {
	Lookup(ctx context.Context, id model.Identity) (*model.LedgerEntry, error)
}

// StaticHandler serves documents from a static.Source. Gemtext documents
// requested with a client certificate get a banner naming the fingerprint.
type StaticHandler struct {
	source static.Source
	ledger IdentityLookup
}

// NewStaticHandler creates a new StaticHandler; ledger may be nil
func NewStaticHandler(source static.Source, ledger IdentityLookup) *StaticHandler {
	return &StaticHandler{source: source, ledger: ledger}
}

func (h *StaticHandler) ServeGemini(ctx context.Context, req *gemini.Request) (*gemini.Response, error) {
	res, err := h.source.Fetch(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	if !req.HasIdentity() || !res.IsGemtext() {
		return gemini.Success(res.MIMEType, res.Body), nil
	}

	doc := h.banner(ctx, req.Identity)
	doc.Raw(string(res.Body))
	return gemini.Gemtext(doc), nil
}

func (h *StaticHandler) banner(ctx context.Context, id model.Identity) *gemtext.Document {
	doc := &gemtext.Document{}
	doc.Heading(1, "Client certificate accepted").
		Blank().
		Text("SHA-256 fingerprint: " + string(id))
	if h.ledger != nil {
		if entry, err := h.ledger.Lookup(ctx, id); err == nil && !entry.FirstSeen.IsZero() {
			doc.Text("First seen: " + entry.FirstSeen.UTC().Format(time.RFC3339))
		}
	}
	return doc.Blank()
}
