package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/civix-app/civix-backend/internal/pkg/validator"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeJurisdictionRepo struct {
	jurisdiction *entity.Jurisdiction
	chunkCount   int
}

func (f *fakeJurisdictionRepo) Create(ctx context.Context, j entity.Jurisdiction) (*entity.Jurisdiction, error) {
	return &j, nil
}

func (f *fakeJurisdictionRepo) Get(ctx context.Context, id string) (*entity.Jurisdiction, error) {
	if f.jurisdiction != nil && f.jurisdiction.ID == id {
		return f.jurisdiction, nil
	}
	return nil, fmt.Errorf("%w: %s", entity.ErrJurisdictionNotFound, id)
}

func (f *fakeJurisdictionRepo) GetBySlug(ctx context.Context, slug string) (*entity.Jurisdiction, error) {
	return f.jurisdiction, nil
}

func (f *fakeJurisdictionRepo) GetByNameState(ctx context.Context, name, state string) (*entity.Jurisdiction, error) {
	return f.jurisdiction, nil
}

func (f *fakeJurisdictionRepo) List(ctx context.Context) ([]*entity.Jurisdiction, error) {
	return []*entity.Jurisdiction{f.jurisdiction}, nil
}

func (f *fakeJurisdictionRepo) ChunkCount(ctx context.Context, id string) (int, error) {
	return f.chunkCount, nil
}

type fakeOrdinanceRepo struct {
	chunks []*entity.OrdinanceChunk
}

func (f *fakeOrdinanceRepo) Create(ctx context.Context, c entity.OrdinanceChunk) (*entity.OrdinanceChunk, error) {
	return &c, nil
}

func (f *fakeOrdinanceRepo) Get(ctx context.Context, id string) (*entity.OrdinanceChunk, error) {
	return nil, fmt.Errorf("%w: %s", entity.ErrChunkNotFound, id)
}

func (f *fakeOrdinanceRepo) ListByJurisdiction(ctx context.Context, jurisdictionID string) ([]*entity.OrdinanceChunk, error) {
	return f.chunks, nil
}

func (f *fakeOrdinanceRepo) ListWithoutEmbedding(ctx context.Context, jurisdictionID string, limit int) ([]*entity.OrdinanceChunk, error) {
	return nil, nil
}

func (f *fakeOrdinanceRepo) SetEmbedding(ctx context.Context, id string, embedding []float64) error {
	return nil
}

type fakeEmbedder struct {
	vector []float64
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, taskType entity.EmbeddingTaskType) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeCompleter struct {
	text      string
	lastReq   *entity.CompletionRequest
	callCount int
}

func (f *fakeCompleter) Complete(ctx context.Context, req *entity.CompletionRequest) (*entity.CompletionResult, error) {
	f.lastReq = req
	f.callCount++
	return &entity.CompletionResult{Text: f.text, Provider: "fake", TokensUsed: 42}, nil
}

func (f *fakeCompleter) Name() string { return "fake" }

func cincinnati() *entity.Jurisdiction {
	return &entity.Jurisdiction{
		ID:    "j-1",
		Slug:  "cincinnati-oh",
		Name:  "Cincinnati",
		State: "OH",
		Type:  entity.JurisdictionTypeCity,
	}
}

func strPtr(s string) *string { return &s }

func chunkFixtures() []*entity.OrdinanceChunk {
	return []*entity.OrdinanceChunk{
		{
			ID:        "c-orthogonal",
			Chapter:   "301",
			Title:     "Noise",
			Content:   "Quiet hours apply overnight.",
			Embedding: []float64{0, 1, 0},
		},
		{
			ID:        "c-exact",
			Chapter:   "701",
			Section:   strPtr("21"),
			Title:     "Kennels",
			Content:   "Kennel license required for five or more dogs.",
			Embedding: []float64{1, 0, 0},
		},
		{
			ID:        "c-close",
			Chapter:   "701",
			Title:     "Dog licenses",
			Content:   "Dogs over three months must be licensed.",
			Embedding: []float64{1, 1, 0},
		},
		{
			ID:      "c-pending",
			Chapter: "999",
			Title:   "Not embedded yet",
			Content: "Pending ingestion.",
		},
	}
}

func newTestUsecase(jr *fakeJurisdictionRepo, or *fakeOrdinanceRepo, emb *fakeEmbedder, comp *fakeCompleter) *QueryUsecase {
	return NewUsecase(jr, or, emb, comp, validator.NewRequestValidator(5, 20), 2000, 0.2, zap.NewNop())
}

func TestAskRanksAndCites(t *testing.T) {
	jr := &fakeJurisdictionRepo{jurisdiction: cincinnati(), chunkCount: 4}
	or := &fakeOrdinanceRepo{chunks: chunkFixtures()}
	emb := &fakeEmbedder{vector: []float64{1, 0, 0}}
	comp := &fakeCompleter{text: "You need a kennel license [Cincinnati Code §701-21]."}

	uc := newTestUsecase(jr, or, emb, comp)

	resp, err := uc.Ask(context.Background(), &entity.AskRequest{
		Question:       "how many dogs can I keep?",
		JurisdictionID: "j-1",
		TopK:           2,
	})
	require.NoError(t, err)

	// Only embedded chunks are scored; top 2 of 3 come back as sources.
	require.Len(t, resp.Sources, 2)
	require.Equal(t, "Cincinnati Code §701-21", resp.Sources[0].Citation)
	require.Equal(t, 100, resp.Sources[0].Similarity)
	require.Equal(t, "Cincinnati Code §701", resp.Sources[1].Citation)
	require.Equal(t, 71, resp.Sources[1].Similarity)

	require.Equal(t, "You need a kennel license [Cincinnati Code §701-21].", resp.Answer)
	require.Equal(t, 3, resp.Metadata.ChunksSearched)
	require.Equal(t, 2, resp.Metadata.TopChunksUsed)
	require.Equal(t, "fake", resp.Metadata.Provider)
	require.Equal(t, 42, resp.Metadata.TokensUsed)
	require.Equal(t, "high", resp.Metadata.Confidence)

	// The prompt carries the retrieved text and pins answers to it.
	require.Contains(t, comp.lastReq.Prompt, "Kennel license required")
	require.Contains(t, comp.lastReq.System, "NEVER hallucinate")
	require.Equal(t, 2000, comp.lastReq.MaxTokens)
	require.InDelta(t, 0.2, comp.lastReq.Temperature, 1e-9)
}

func TestAskNoOrdinanceData(t *testing.T) {
	jr := &fakeJurisdictionRepo{jurisdiction: cincinnati(), chunkCount: 0}
	comp := &fakeCompleter{text: "unused"}

	uc := newTestUsecase(jr, &fakeOrdinanceRepo{}, &fakeEmbedder{vector: []float64{1}}, comp)

	resp, err := uc.Ask(context.Background(), &entity.AskRequest{
		Question:       "anything",
		JurisdictionID: "j-1",
	})
	require.NoError(t, err)

	require.Contains(t, resp.Answer, "I don't have ordinance data for Cincinnati, OH yet")
	require.Empty(t, resp.Sources)
	require.NotNil(t, resp.Sources)
	require.Equal(t, "low", resp.Metadata.Confidence)
	require.Zero(t, comp.callCount)
}

func TestAskNoEmbeddedChunks(t *testing.T) {
	jr := &fakeJurisdictionRepo{jurisdiction: cincinnati(), chunkCount: 1}
	or := &fakeOrdinanceRepo{chunks: []*entity.OrdinanceChunk{
		{ID: "c-pending", Chapter: "999", Title: "Pending", Content: "Pending."},
	}}

	uc := newTestUsecase(jr, or, &fakeEmbedder{vector: []float64{1, 0, 0}}, &fakeCompleter{})

	resp, err := uc.Ask(context.Background(), &entity.AskRequest{
		Question:       "anything",
		JurisdictionID: "j-1",
	})
	require.NoError(t, err)
	require.Contains(t, resp.Answer, "No ordinance data found for Cincinnati, OH")
	require.Empty(t, resp.Sources)
}

func TestAskSkipsMismatchedDimensions(t *testing.T) {
	jr := &fakeJurisdictionRepo{jurisdiction: cincinnati(), chunkCount: 2}
	or := &fakeOrdinanceRepo{chunks: []*entity.OrdinanceChunk{
		{ID: "c-ok", Chapter: "1", Title: "A", Content: "a", Embedding: []float64{1, 0, 0}},
		{ID: "c-bad-dims", Chapter: "2", Title: "B", Content: "b", Embedding: []float64{1, 0}},
	}}

	uc := newTestUsecase(jr, or, &fakeEmbedder{vector: []float64{1, 0, 0}}, &fakeCompleter{text: "answer"})

	resp, err := uc.Ask(context.Background(), &entity.AskRequest{
		Question:       "anything",
		JurisdictionID: "j-1",
	})
	require.NoError(t, err)
	require.Len(t, resp.Sources, 1)
	require.Equal(t, 1, resp.Metadata.ChunksSearched)
}

func TestAskEmbeddingFailure(t *testing.T) {
	jr := &fakeJurisdictionRepo{jurisdiction: cincinnati(), chunkCount: 1}
	or := &fakeOrdinanceRepo{chunks: chunkFixtures()}
	emb := &fakeEmbedder{err: fmt.Errorf("%w: boom", entity.ErrEmbeddingFailed)}

	uc := newTestUsecase(jr, or, emb, &fakeCompleter{})

	_, err := uc.Ask(context.Background(), &entity.AskRequest{
		Question:       "anything",
		JurisdictionID: "j-1",
	})
	require.ErrorIs(t, err, entity.ErrEmbeddingFailed)
}

func TestAskUnknownJurisdiction(t *testing.T) {
	uc := newTestUsecase(&fakeJurisdictionRepo{}, &fakeOrdinanceRepo{}, &fakeEmbedder{}, &fakeCompleter{})

	_, err := uc.Ask(context.Background(), &entity.AskRequest{
		Question:       "anything",
		JurisdictionID: "missing",
	})
	require.ErrorIs(t, err, entity.ErrJurisdictionNotFound)
}

func TestCitationLabel(t *testing.T) {
	withSection := &entity.OrdinanceChunk{Chapter: "701", Section: strPtr("21")}
	require.Equal(t, "Cincinnati Code §701-21", citationLabel("Cincinnati", withSection))

	chapterOnly := &entity.OrdinanceChunk{Chapter: "701"}
	require.Equal(t, "Cincinnati Code §701", citationLabel("Cincinnati", chapterOnly))
}

func TestAnswerConfidence(t *testing.T) {
	require.Equal(t, "high", answerConfidence([]float64{0.9, 0.8}, "Definitive answer."))
	// Hedged wording caps a strong retrieval at medium.
	require.Equal(t, "medium", answerConfidence([]float64{0.9, 0.8}, "I'm not sure, consult the city."))
	require.Equal(t, "medium", answerConfidence([]float64{0.7, 0.55}, "Probably fine."))
	require.Equal(t, "low", answerConfidence([]float64{0.3}, "Weak retrieval."))
	require.Equal(t, "low", answerConfidence(nil, "No chunks at all."))
}
