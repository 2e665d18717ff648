package server

import (
	"errors"

	"github.com/mcoot/gemtofu/internal/gemini"
	"github.com/mcoot/gemtofu/internal/identity"
	"github.com/mcoot/gemtofu/internal/model"
	"github.com/mcoot/gemtofu/internal/static"
)

// errRouteNotFound is returned for paths no handler serves
var errRouteNotFound = errors.New("route not found")

// errorResponse maps an error to the Gemini response sent to the client
func errorResponse(err error) *gemini.Response {
	switch {
	case errors.Is(err, gemini.ErrBadRequest):
		return gemini.Failure(gemini.StatusBadRequest, gemini.MetaBadRequest)
	case errors.Is(err, identity.ErrIdentityMissing):
		return gemini.Failure(gemini.StatusCertificateRequired, gemini.MetaCertificateRequired)
	case errors.Is(err, model.ErrGameNotFound),
		errors.Is(err, static.ErrNotFound),
		errors.Is(err, errRouteNotFound):
		return gemini.Failure(gemini.StatusNotFound, gemini.MetaNotFound)
	default:
		return gemini.Failure(gemini.StatusServerFailure, gemini.MetaServerFailure)
	}
}
