package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/microfix/dashboard/internal/constants"
	"github.com/microfix/dashboard/internal/infrastructure/logger"
	appvalidation "github.com/microfix/dashboard/internal/infrastructure/validation"
	"github.com/microfix/dashboard/internal/processing/links"
	"github.com/microfix/dashboard/pkg/httputils"
)

// maxBodyBytes bounds link payloads; a card is a few hundred bytes.
const maxBodyBytes = 1 << 20

type LinksHandler struct {
	svc *links.Service
}

func NewLinksHandler(svc *links.Service) *LinksHandler {
	return &LinksHandler{svc: svc}
}

type createLinkRequest struct {
	Title       string   `json:"title" validate:"required,notblank"`
	URL         string   `json:"url" validate:"required,notblank"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
	CreatedAt   int64    `json:"createdAt,omitempty"`
}

// updateLinkRequest ignores id and createdAt if a client sends them.
type updateLinkRequest struct {
	Title       *string   `json:"title" validate:"omitempty,notblank"`
	URL         *string   `json:"url" validate:"omitempty,notblank"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"imageUrl"`
	Tags        *[]string `json:"tags"`
}

type deleteLinkResponse struct {
	Success   bool   `json:"success"`
	DeletedID string `json:"deletedId"`
}

type setupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *LinksHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.ListLinks(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list links")
		return
	}
	httputils.WriteJSON(w, r, http.StatusOK, all)
}

func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	link, err := h.svc.CreateLink(r.Context(), links.CreateLinkInput{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
		CreatedAt:   req.CreatedAt,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "failed to create link")
		return
	}

	httputils.WriteJSON(w, r, http.StatusCreated, link)
}

func (h *LinksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateLinkRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	link, err := h.svc.UpdateLink(r.Context(), id, links.UpdateLinkInput{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "failed to update link", zap.String("id", id))
		return
	}

	httputils.WriteJSON(w, r, http.StatusOK, link)
}

func (h *LinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.svc.DeleteLink(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err, "failed to delete link", zap.String("id", id))
		return
	}

	httputils.WriteJSON(w, r, http.StatusOK, deleteLinkResponse{Success: true, DeletedID: id})
}

func (h *LinksHandler) SetupDB(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SetupSchema(r.Context()); err != nil {
		h.writeServiceError(w, r, err, "failed to set up schema")
		return
	}

	httputils.WriteJSON(w, r, http.StatusOK, setupResponse{Success: true, Message: constants.MsgSchemaCreated})
}

func (h *LinksHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string, fields ...zap.Field) {
	switch {
	case errors.Is(err, links.ErrNotFound):
		httputils.WriteAPIError(w, r, constants.ErrLinkNotFound)
	case errors.Is(err, links.ErrInvalidInput):
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage(err.Error()))
	default:
		logger.Error(msg, append(fields, zap.Error(err))...)
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
	}
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return false
	}
	if err := appvalidation.Validate(dst); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage(appvalidation.Message(err)))
		return false
	}
	return true
}
