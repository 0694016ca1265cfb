package decision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/civix-app/civix-backend/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase DecisionUsecase
}

func NewHandler(usecase DecisionUsecase) *Handler {
	return &Handler{
		usecase: usecase,
	}
}

// Evaluate handles POST /api/decisions/evaluate
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Evaluate")

	var req entity.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctxzap.Info(ctx, "evaluating compliance rules",
		zap.String("jurisdiction", req.Jurisdiction),
		zap.String("category", req.Category),
		zap.Int("input_count", len(req.Inputs)),
	)

	result, err := h.usecase.Evaluate(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "evaluation complete",
		zap.String("outcome", result.Outcome),
		zap.Int("matched_rules", len(result.MatchedRules)),
	)

	h.respondJSON(w, http.StatusOK, result)
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

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrJurisdictionNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "jurisdiction not found", err)
	case errors.Is(err, entity.ErrRulesetNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "no ruleset for this category", err)
	case errors.Is(err, entity.ErrNoRules):
		h.respondError(ctx, w, http.StatusNotFound, "category has no rules configured", err)
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
