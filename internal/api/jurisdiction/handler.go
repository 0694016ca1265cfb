package jurisdiction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/civix-app/civix-backend/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	repo JurisdictionReader
}

func NewHandler(repo JurisdictionReader) *Handler {
	return &Handler{
		repo: repo,
	}
}

// List handles GET /api/jurisdictions
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListJurisdictions")

	jurisdictions, err := h.repo.List(ctx)
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
		return
	}
	if jurisdictions == nil {
		jurisdictions = []*entity.Jurisdiction{}
	}

	ctxzap.Debug(ctx, "jurisdictions listed", zap.Int("count", len(jurisdictions)))
	h.respondJSON(w, http.StatusOK, map[string]any{
		"jurisdictions": jurisdictions,
	})
}

// Lookup handles GET /api/jurisdictions/lookup?city=&state= (or ?slug=)
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "LookupJurisdiction")

	slug := strings.TrimSpace(r.URL.Query().Get("slug"))
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	state := strings.TrimSpace(r.URL.Query().Get("state"))

	var (
		jurisdiction *entity.Jurisdiction
		err          error
	)
	switch {
	case slug != "":
		jurisdiction, err = h.repo.GetBySlug(ctx, slug)
	case city != "" && state != "":
		jurisdiction, err = h.repo.GetByNameState(ctx, city, state)
	default:
		h.respondError(ctx, w, http.StatusBadRequest, "provide either slug or city and state", nil)
		return
	}

	if err != nil {
		if errors.Is(err, entity.ErrJurisdictionNotFound) {
			h.respondError(ctx, w, http.StatusNotFound, "jurisdiction not found", err)
			return
		}
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
		return
	}

	ctxzap.Debug(ctx, "jurisdiction resolved", zap.String("jurisdiction_id", jurisdiction.ID))
	h.respondJSON(w, http.StatusOK, jurisdiction)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Error(ctx, message)
	}
	h.respondJSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
