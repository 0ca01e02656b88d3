// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalogsync

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/komikflow/internal/ingest"
	requestutil "github.com/taibuivan/komikflow/internal/platform/request"
	"github.com/taibuivan/komikflow/internal/platform/respond"
	"github.com/taibuivan/komikflow/internal/platform/validate"
)

// Handler exposes catalog sync over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/catalog-sync", handler.run)
}

func (handler *Handler) run(writer http.ResponseWriter, request *http.Request) {
	var body Request
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	body.SourceCode = strings.ToUpper(strings.TrimSpace(body.SourceCode))

	validator := &validate.Validator{}
	validator.Range("maxPages", body.MaxPages, 0, 100)
	if body.SourceCode != "" && body.SourceCode != AllSources {
		validator.SourceCode("sourceCode", body.SourceCode)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Run(requestutil.Detached(request), body)
	if err != nil {
		respond.Error(writer, request, ingest.Classify(err))
		return
	}
	respond.JSON(writer, http.StatusOK, result)
}
