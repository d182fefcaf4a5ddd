package httphandler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"
)

const maxUploadMemory = 32 << 20

type pathBody struct {
	Path string `json:"path"`
}

func (h *Handler) FilesListGet(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Files.List(r.URL.Query().Get("path"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) FileUploadPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		h.writeError(w, r, fmt.Errorf("%w: no file part", errBadRequest))
		return
	}
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer file.Close()

	name, err := h.Files.Upload(r.Context(), r.FormValue("path"), header.Filename, file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message":  "File uploaded successfully",
		"filename": name,
	})
}

func (h *Handler) FolderCreatePost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	name, err := h.Files.CreateFolder(r.Context(), r.URL.Query().Get("path"), body.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Folder created successfully",
		"name":    name,
	})
}

func (h *Handler) FileDeletePost(w http.ResponseWriter, r *http.Request) {
	var body pathBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.Files.Delete(r.Context(), body.Path); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted successfully"})
}

func (h *Handler) FileDownloadGet(w http.ResponseWriter, r *http.Request) {
	abs, err := h.Files.Open(r.URL.Query().Get("path"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	serveAttachment(w, r, abs)
}

func (h *Handler) ShareLinkPost(w http.ResponseWriter, r *http.Request) {
	var body pathBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	link, err := h.Files.Share(r.Context(), body.Path)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

func (h *Handler) ShareGet(w http.ResponseWriter, r *http.Request) {
	abs, err := h.Files.Resolve(r.Context(), mux.Vars(r)["link"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	serveAttachment(w, r, abs)
}

func serveAttachment(w http.ResponseWriter, r *http.Request, abs string) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(abs)})
	w.Header().Set("Content-Disposition", disposition)

	http.ServeFile(w, r, abs)
}
