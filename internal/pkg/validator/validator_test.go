package validator

import (
	"testing"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestValidateAsk(t *testing.T) {
	v := NewRequestValidator(5, 20)

	t.Run("fills default topK", func(t *testing.T) {
		req := &entity.AskRequest{Question: "can I have chickens?", JurisdictionID: "abc"}
		require.NoError(t, v.ValidateAsk(req))
		require.Equal(t, 5, req.TopK)
	})

	t.Run("clamps topK to ceiling", func(t *testing.T) {
		req := &entity.AskRequest{Question: "q", JurisdictionID: "abc", TopK: 100}
		require.NoError(t, v.ValidateAsk(req))
		require.Equal(t, 20, req.TopK)
	})

	t.Run("rejects negative topK", func(t *testing.T) {
		req := &entity.AskRequest{Question: "q", JurisdictionID: "abc", TopK: -1}
		require.ErrorIs(t, v.ValidateAsk(req), entity.ErrInvalidParameter)
	})

	t.Run("rejects blank question", func(t *testing.T) {
		req := &entity.AskRequest{Question: "   ", JurisdictionID: "abc"}
		require.ErrorIs(t, v.ValidateAsk(req), entity.ErrMissingField)
	})

	t.Run("rejects missing jurisdiction", func(t *testing.T) {
		req := &entity.AskRequest{Question: "q"}
		require.ErrorIs(t, v.ValidateAsk(req), entity.ErrMissingField)
	})
}

func TestValidateEvaluate(t *testing.T) {
	v := NewRequestValidator(5, 20)

	require.NoError(t, v.ValidateEvaluate(&entity.EvaluateRequest{
		Jurisdiction: "Cincinnati, OH",
		Category:     "animals",
	}))

	require.ErrorIs(t, v.ValidateEvaluate(&entity.EvaluateRequest{
		Category: "animals",
	}), entity.ErrMissingField)

	require.ErrorIs(t, v.ValidateEvaluate(&entity.EvaluateRequest{
		Jurisdiction: "Cincinnati",
		Category:     "animals",
	}), entity.ErrInvalidParameter)

	require.ErrorIs(t, v.ValidateEvaluate(&entity.EvaluateRequest{
		Jurisdiction: "Cincinnati, OH",
	}), entity.ErrMissingField)
}

func TestParseJurisdiction(t *testing.T) {
	name, state, err := ParseJurisdiction("Cincinnati, OH")
	require.NoError(t, err)
	require.Equal(t, "Cincinnati", name)
	require.Equal(t, "OH", state)

	name, state, err = ParseJurisdiction("  Blue Ash ,  oh ")
	require.NoError(t, err)
	require.Equal(t, "Blue Ash", name)
	require.Equal(t, "oh", state)

	_, _, err = ParseJurisdiction("Cincinnati")
	require.ErrorIs(t, err, entity.ErrInvalidParameter)

	_, _, err = ParseJurisdiction(" , OH")
	require.ErrorIs(t, err, entity.ErrInvalidParameter)
}
