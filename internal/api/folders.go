package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListFolders handles GET /api/folders.
//
//	@Summary		List folders with idea counts and badge colours
//	@Tags			folders
//	@Produce		json
//	@Success		200	{object}	FolderListResponse
//	@Security		BearerAuth
//	@Router			/folders [get]
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.ideas.ListFolders(r.Context(), owner(r))
	if err != nil {
		writeError(w, "list folders", err)
		return
	}
	writeJSON(w, http.StatusOK, FolderListResponse{Folders: folders})
}

// GetFolder handles GET /api/folders/{id}.
//
//	@Summary		Get a folder, including the uncategorized pseudo folder
//	@Tags			folders
//	@Produce		json
//	@Param			id	path		string	true	"Folder id or 'uncategorized'"
//	@Success		200	{object}	FolderSummary
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{id} [get]
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, err := h.ideas.GetFolder(r.Context(), owner(r), id)
	if err != nil {
		writeError(w, "get folder", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// CreateFolder handles POST /api/folders.
//
//	@Summary		Create a folder
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FolderRequest	true	"Folder name"
//	@Success		201		{object}	FolderSummary
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req FolderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	f, err := h.ideas.CreateFolder(r.Context(), owner(r), req.Name)
	if err != nil {
		writeError(w, "create folder", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// RenameFolder handles PUT /api/folders/{id}.
//
//	@Summary		Rename a folder
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Folder id"
//	@Param			body	body		FolderRequest	true	"New name"
//	@Success		200		{object}	FolderSummary
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{id} [put]
func (h *Handler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req FolderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	f, err := h.ideas.RenameFolder(r.Context(), owner(r), id, req.Name)
	if err != nil {
		writeError(w, "rename folder", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// DeleteFolder handles DELETE /api/folders/{id}.
//
//	@Summary		Delete a folder; its ideas become uncategorized
//	@Tags			folders
//	@Param			id	path	string	true	"Folder id"
//	@Success		204	"Folder deleted"
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{id} [delete]
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ideas.DeleteFolder(r.Context(), owner(r), id); err != nil {
		writeError(w, "delete folder", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
