// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/komikflow/internal/catalog"
	requestutil "github.com/taibuivan/komikflow/internal/platform/request"
	"github.com/taibuivan/komikflow/internal/platform/respond"
	"github.com/taibuivan/komikflow/internal/platform/validate"
	"github.com/taibuivan/komikflow/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for operator endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new admin [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/sources", handler.listSources)
	router.Put("/sources/{code}", handler.upsertSource)
	router.Patch("/sources/{code}", handler.toggleSource)

	router.Get("/logs", handler.listLogs)
	router.Get("/stats", handler.stats)
}

// # Source Endpoints

/*
GET /api/v1/ingest/sources.

Response:
  - 200: []Source
*/
func (handler *Handler) listSources(writer http.ResponseWriter, request *http.Request) {
	sources, err := handler.service.ListSources(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, sources)
}

/*
PUT /api/v1/ingest/sources/{code}.

Description: Creates or replaces a source. The path code wins over the body.

Request (Body):
  - name: string
  - baseUrl: string
  - isActive: bool

Response:
  - 200: Source: Stored row
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) upsertSource(writer http.ResponseWriter, request *http.Request) {
	var input catalog.Source
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.Code = requestutil.Param(request, "code")

	if err := handler.service.UpsertSource(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

type toggleRequest struct {
	IsActive *bool `json:"isActive"`
}

/*
PATCH /api/v1/ingest/sources/{code}.

Request (Body):
  - isActive: bool

Response:
  - 200: Source: Updated row
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND
*/
func (handler *Handler) toggleSource(writer http.ResponseWriter, request *http.Request) {
	var input toggleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Custom("isActive", input.IsActive == nil, "This field is required")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	source, err := handler.service.SetSourceActive(request.Context(), requestutil.Param(request, "code"), *input.IsActive)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, source)
}

// # Activity Endpoints

/*
GET /api/v1/ingest/logs.

Request:
  - page: int
  - limit: int (defaults to 50)

Response:
  - 200: []ScrapeLogView: Paginated, newest first
*/
func (handler *Handler) listLogs(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	logs, total, err := handler.service.RecentLogs(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, logs, pagination.NewMeta(params.Page, params.Limit, total))
}

// GET /api/v1/ingest/stats.
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}
