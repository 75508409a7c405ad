// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package stubapi

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/asharvi/admin-core/internal/platform/apperr"
	"github.com/asharvi/admin-core/internal/platform/respond"
	"github.com/asharvi/admin-core/internal/upload"
	"github.com/asharvi/admin-core/pkg/uuidv7"
)

// cdnBase is the fake CDN prefix for stored upload URLs.
const cdnBase = "https://cdn.asharvi.dev/uploads"

// UploadHandler accepts multipart file uploads and hands back CDN-style URLs.
//
// File contents are kept in memory, keyed by the generated URL, so tests can
// assert what was received.
type UploadHandler struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewUploadHandler returns an empty upload handler.
func NewUploadHandler() *UploadHandler {
	return &UploadHandler{files: map[string][]byte{}}
}

// RegisterRoutes mounts the upload routes on the router.
func (handler *UploadHandler) RegisterRoutes(router chi.Router) {
	router.Post("/uploads/thumbnail", handler.accept(upload.KindThumbnail))
	router.Post("/uploads/attachment", handler.accept(upload.KindAttachment))
}

// Stored returns the bytes received for a previously returned URL.
func (handler *UploadHandler) Stored(url string) ([]byte, bool) {
	handler.mu.Lock()
	defer handler.mu.Unlock()
	content, ok := handler.files[url]
	return content, ok
}

func (handler *UploadHandler) accept(kind upload.Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		if err := request.ParseMultipartForm(kind.MaxBytes() + 1024); err != nil {
			respond.Error(writer, request, apperr.Validation("Malformed multipart body"))
			return
		}

		file, header, err := request.FormFile("file")
		if err != nil {
			respond.Error(writer, request, apperr.Validation("Missing file field"))
			return
		}
		defer file.Close()

		if header.Size > kind.MaxBytes() {
			respond.Error(writer, request, apperr.PayloadTooLarge(
				fmt.Sprintf("File exceeds the %d byte limit", kind.MaxBytes()),
			))
			return
		}
		if err := upload.CheckFile(header.Filename, header.Size, kind); err != nil {
			respond.Error(writer, request, err)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		name := strings.ToLower(filepath.Base(header.Filename))
		url := fmt.Sprintf("%s/%s/%s-%s", cdnBase, kind, uuidv7.New(), name)
		handler.mu.Lock()
		handler.files[url] = content
		handler.mu.Unlock()

		// Flat payload: the upload pipeline decodes {url} without an envelope.
		respond.JSON(writer, http.StatusCreated, map[string]string{"url": url})
	}
}
