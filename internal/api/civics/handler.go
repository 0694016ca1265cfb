// Package civics exposes the deterministic structured-rules endpoint: no
// model calls, answers assembled straight from per-jurisdiction rule files.
package civics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	civicsdata "github.com/civix-app/civix-backend/internal/civics"
	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/civix-app/civix-backend/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// topic matches below this confidence are listed but not answered
const answerThreshold = 0.5

type Handler struct {
	store   *civicsdata.Store
	matcher *civicsdata.Matcher
}

func NewHandler(store *civicsdata.Store, matcher *civicsdata.Matcher) *Handler {
	return &Handler{
		store:   store,
		matcher: matcher,
	}
}

// List handles GET /api/civics. With ?jurisdiction= it returns that
// jurisdiction's topic index; without it, the jurisdictions that have
// structured rule data.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListCivics")

	jurisdiction := strings.TrimSpace(r.URL.Query().Get("jurisdiction"))
	if jurisdiction == "" {
		jurisdictions := h.store.AvailableJurisdictions()
		if jurisdictions == nil {
			jurisdictions = []string{}
		}
		h.respondJSON(w, http.StatusOK, entity.CivicsJurisdictionsResponse{
			Jurisdictions: jurisdictions,
		})
		return
	}

	index, err := h.store.Index(jurisdiction)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	topics := make([]entity.CivicsTopicSummary, 0, len(index.Topics))
	for _, t := range index.Topics {
		topics = append(topics, entity.CivicsTopicSummary{
			ID:                 t.ID,
			Title:              t.Title,
			Keywords:           t.Keywords,
			OrdinanceReference: t.OrdinanceReference,
		})
	}

	questions := make([]string, 0, len(index.CommonQuestions))
	for _, cq := range index.CommonQuestions {
		questions = append(questions, cq.Question)
	}

	h.respondJSON(w, http.StatusOK, entity.CivicsIndexResponse{
		Jurisdiction:     index.Jurisdiction,
		JurisdictionName: index.JurisdictionName,
		State:            index.State,
		Topics:           topics,
		CommonQuestions:  questions,
		Contact:          index.Contact,
	})
}

// Answer handles POST /api/civics. Canonical questions win over keyword
// matches; keyword matches answer only above the confidence threshold.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AnswerCivics")

	var req entity.CivicsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.Jurisdiction) == "" {
		h.respondError(ctx, w, http.StatusBadRequest, "question and jurisdiction are required", nil)
		return
	}

	ctxzap.Info(ctx, "matching civics question",
		zap.String("jurisdiction", req.Jurisdiction),
		zap.Int("question_length", len(req.Question)),
	)

	if cqMatch, err := h.matcher.MatchCommonQuestion(req.Jurisdiction, req.Question); err != nil {
		h.handleError(ctx, w, err)
		return
	} else if cqMatch != nil {
		if answer, ok := civicsdata.Answer(cqMatch); ok {
			ctxzap.Info(ctx, "common question matched", zap.String("topic", cqMatch.Topic))
			h.respondJSON(w, http.StatusOK, entity.CivicsAnswerResponse{
				Answer:  answer,
				Source:  entity.CivicsSourceCommonQuestion,
				Topic:   cqMatch.Topic,
				Matches: []entity.CivicsMatchSummary{},
			})
			return
		}
		ctxzap.Warn(ctx, "common question answer path did not resolve",
			zap.String("topic", cqMatch.Topic),
			zap.String("answer_path", cqMatch.AnswerPath),
		)
	}

	matches, err := h.matcher.FindMatchingTopics(req.Jurisdiction, req.Question)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	summaries := make([]entity.CivicsMatchSummary, 0, len(matches))
	for _, m := range matches {
		summaries = append(summaries, entity.CivicsMatchSummary{
			Topic:           m.Topic.ID,
			Title:           m.Topic.Title,
			Confidence:      m.Confidence,
			MatchedKeywords: m.MatchedKeywords,
		})
	}

	if len(matches) > 0 && matches[0].Confidence >= answerThreshold {
		ctxzap.Info(ctx, "topic matched",
			zap.String("topic", matches[0].Topic.ID),
			zap.Float64("confidence", matches[0].Confidence),
		)
		h.respondJSON(w, http.StatusOK, entity.CivicsAnswerResponse{
			Answer:     civicsdata.FormatTopicAnswer(req.Question, matches[0]),
			Source:     entity.CivicsSourceTopicMatch,
			Topic:      matches[0].Topic.ID,
			Confidence: matches[0].Confidence,
			Matches:    summaries,
		})
		return
	}

	ctxzap.Info(ctx, "no confident match", zap.Int("candidates", len(summaries)))
	h.respondJSON(w, http.StatusOK, entity.CivicsAnswerResponse{
		Answer:  "I couldn't find a structured rule that answers this question. Try the ordinance search for a broader answer.",
		Source:  entity.CivicsSourceNone,
		Matches: summaries,
	})
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

func (h *Handler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrJurisdictionNotFound) {
		h.respondError(ctx, w, http.StatusNotFound, "no structured rules for this jurisdiction", err)
		return
	}
	h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
}
