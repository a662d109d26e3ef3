package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jotter/internal/labelcolor"
)

// Palette handles GET /api/labels.
//
//	@Summary		The label colour palette
//	@Tags			labels
//	@Produce		json
//	@Success		200	{object}	PaletteResponse
//	@Router			/labels [get]
func (h *Handler) Palette(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PaletteResponse{
		Palette:       labelcolor.Palette(),
		Uncategorized: labelcolor.UncategorizedBadge(),
	})
}

// Label handles GET /api/labels/{label}.
//
//	@Summary		Badge colours for a folder or tag label
//	@Tags			labels
//	@Produce		json
//	@Param			label	path		string	true	"Label text"
//	@Success		200		{object}	LabelResponse
//	@Router			/labels/{label} [get]
func (h *Handler) Label(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	if decoded, err := url.PathUnescape(label); err == nil {
		label = decoded
	}
	b := labelcolor.BadgeFor(label)
	writeJSON(w, http.StatusOK, LabelResponse{Badge: b, ForegroundHex: b.Foreground.Hex()})
}
