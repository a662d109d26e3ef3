package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jotter/internal/account"
	"github.com/starford/jotter/internal/highlight"
	"github.com/starford/jotter/internal/ideaservice"
)

// Handler holds API route handlers.
type Handler struct {
	ideas    *ideaservice.Service
	accounts *account.Service
}

// NewHandler creates a new Handler.
func NewHandler(ideas *ideaservice.Service, accounts *account.Service) *Handler {
	return &Handler{ideas: ideas, accounts: accounts}
}

// ListIdeas handles GET /api/ideas.
//
//	@Summary		List ideas, optionally filtered by folder and query
//	@Tags			ideas
//	@Produce		json
//	@Param			folder	query		string	false	"Folder id or 'uncategorized'"
//	@Param			q		query		string	false	"Filter on title, description and tags"
//	@Param			order	query		string	false	"Creation order"	Enums(desc, asc)
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			tz		query		string	false	"IANA zone used for date groups"
//	@Success		200		{object}	IdeaListResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas [get]
func (h *Handler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit < 0 || offset < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("limit and offset must not be negative"))
		return
	}
	loc := time.UTC
	if tz := q.Get("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("unknown time zone"))
			return
		}
		loc = l
	}

	opts := ideaservice.ListOptions{
		Folder:    q.Get("folder"),
		Query:     q.Get("q"),
		Ascending: q.Get("order") == "asc",
		Limit:     limit,
		Offset:    offset,
	}
	page, err := h.ideas.ListIdeas(r.Context(), owner(r), opts)
	if err != nil {
		writeError(w, "list ideas", err)
		return
	}

	resp := IdeaListResponse{
		Ideas:  page.Items,
		Total:  page.Total,
		Groups: ideaservice.GroupByDate(page.Items, loc),
	}
	if highlight.Normalize(opts.Query) != "" {
		resp.Highlights = highlight.Highlight(opts.Query, ideaFragments(page.Items))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ideaFragments lists the visible text of each idea card. Fragment IDs are
// "<idea id>:title" and "<idea id>:description".
func ideaFragments(ideas []IdeaDetail) []highlight.Fragment {
	out := make([]highlight.Fragment, 0, 2*len(ideas))
	for _, i := range ideas {
		if i.Title != "" {
			out = append(out, highlight.Fragment{ID: i.ID + ":title", Text: i.Title})
		}
		out = append(out, highlight.Fragment{ID: i.ID + ":description", Text: i.Description})
	}
	return out
}

// GetIdea handles GET /api/ideas/{id}.
//
//	@Summary		Get a single idea
//	@Tags			ideas
//	@Produce		json
//	@Param			id	path		string	true	"Idea id"
//	@Success		200	{object}	IdeaDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas/{id} [get]
func (h *Handler) GetIdea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	idea, err := h.ideas.GetIdea(r.Context(), owner(r), id)
	if err != nil {
		writeError(w, "get idea", err, slog.String("id", id))
		return
	}
	w.Header().Set("ETag", `"`+idea.Checksum+`"`)
	writeJSON(w, http.StatusOK, idea)
}

// CreateIdea handles POST /api/ideas.
//
//	@Summary		Capture a new idea
//	@Tags			ideas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IdeaRequest	true	"Idea to create"
//	@Success		201		{object}	IdeaDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas [post]
func (h *Handler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	var req IdeaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	idea, err := h.ideas.CreateIdea(r.Context(), owner(r), req.input())
	if err != nil {
		writeError(w, "create idea", err)
		return
	}
	w.Header().Set("ETag", `"`+idea.Checksum+`"`)
	writeJSON(w, http.StatusCreated, idea)
}

// UpdateIdea handles PUT /api/ideas/{id}.
//
//	@Summary		Replace an idea with optimistic concurrency
//	@Tags			ideas
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string		true	"Idea id"
//	@Param			If-Match	header		string		false	"Checksum from a previous read"
//	@Param			body		body		IdeaRequest	true	"Updated idea"
//	@Success		200			{object}	IdeaDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas/{id} [put]
func (h *Handler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req IdeaRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	idea, err := h.ideas.UpdateIdea(r.Context(), owner(r), id, req.input(), ifMatch)
	if err != nil {
		writeError(w, "update idea", err, slog.String("id", id))
		return
	}
	w.Header().Set("ETag", `"`+idea.Checksum+`"`)
	writeJSON(w, http.StatusOK, idea)
}

// MoveIdea handles PUT /api/ideas/{id}/folder.
//
//	@Summary		File an idea under a folder
//	@Tags			ideas
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Idea id"
//	@Param			body	body		MoveIdeaRequest	true	"Target folder"
//	@Success		200		{object}	IdeaDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas/{id}/folder [put]
func (h *Handler) MoveIdea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req MoveIdeaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	idea, err := h.ideas.MoveIdea(r.Context(), owner(r), id, req.FolderID)
	if err != nil {
		writeError(w, "move idea", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// DeleteIdea handles DELETE /api/ideas/{id}.
//
//	@Summary		Delete an idea
//	@Tags			ideas
//	@Param			id	path	string	true	"Idea id"
//	@Success		204	"Idea deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas/{id} [delete]
func (h *Handler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ideas.DeleteIdea(r.Context(), owner(r), id); err != nil {
		writeError(w, "delete idea", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across ideas
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.ideas.Search(r.Context(), owner(r), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{ID: hit.IdeaID, Title: hit.Title, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Highlight handles POST /api/highlight.
//
//	@Summary		Compute match highlighting for displayed text
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			body	body		HighlightRequest	true	"Query and fragments"
//	@Success		200		{object}	HighlightResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/highlight [post]
func (h *Handler) Highlight(w http.ResponseWriter, r *http.Request) {
	var req HighlightRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := highlight.Highlight(req.Query, req.Fragments)
	rendered := make(map[string]string, len(res))
	for id, ins := range res {
		rendered[id] = highlight.RenderHTML(ins)
	}
	writeJSON(w, http.StatusOK, HighlightResponse{Instructions: res, HTML: rendered})
}
