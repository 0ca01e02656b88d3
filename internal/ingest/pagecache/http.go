// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagecache

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/komikflow/internal/ingest"
	requestutil "github.com/taibuivan/komikflow/internal/platform/request"
	"github.com/taibuivan/komikflow/internal/platform/respond"
)

// Handler exposes chapter pages over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/chapter-pages", handler.getPages)
	router.Get("/chapters/{chapterID}/pages", handler.getPagesByPath)
}

type pagesRequest struct {
	ChapterID string `json:"chapterId"`
}

func (handler *Handler) getPages(writer http.ResponseWriter, request *http.Request) {
	var body pagesRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.serve(writer, request, body.ChapterID)
}

func (handler *Handler) getPagesByPath(writer http.ResponseWriter, request *http.Request) {
	handler.serve(writer, request, requestutil.Param(request, "chapterID"))
}

func (handler *Handler) serve(writer http.ResponseWriter, request *http.Request, chapterID string) {
	result, err := handler.service.GetPages(requestutil.Detached(request), chapterID)
	if err != nil {
		respond.Error(writer, request, ingest.Classify(err))
		return
	}
	respond.JSON(writer, http.StatusOK, result)
}
