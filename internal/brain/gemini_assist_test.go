package brain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"neighborly/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// testAssist returns a gateway that believes it is configured, with the
// backend call seams replaced by the given functions.
func testAssist(
	genText func(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, []domain.Place, error),
	genImage func(ctx context.Context, prompt string) ([]byte, error),
) *GeminiAssist {
	a := &GeminiAssist{client: &genai.Client{}, logger: zap.NewNop()}
	a.genText = genText
	a.genImage = genImage
	return a
}

func failingText(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, []domain.Place, error) {
	return "", nil, errors.New("backend down")
}

func TestNewGeminiAssist_MissingKeyIsNotAnError(t *testing.T) {
	a, err := NewGeminiAssist(context.Background(), "", zap.NewNop())

	require.NoError(t, err)
	assert.False(t, a.Configured())
}

func TestRefineText_Unconfigured(t *testing.T) {
	a, err := NewGeminiAssist(context.Background(), "", zap.NewNop())
	require.NoError(t, err)

	got := a.RefineText(context.Background(), "hello", domain.CategoryHelp)

	assert.Equal(t, RefineUnavailableNotice, got)
	assert.NotEqual(t, "hello", got)
}

func TestRefineText_BackendFailureReturnsOriginalDraft(t *testing.T) {
	a := testAssist(failingText, nil)

	got := a.RefineText(context.Background(), "hello", domain.CategoryHelp)

	assert.Equal(t, "hello", got)
}

func TestRefineText_Success(t *testing.T) {
	a := testAssist(func(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, []domain.Place, error) {
		assert.Contains(t, prompt, "hello")
		assert.Contains(t, prompt, string(domain.CategoryEvents))
		return "  Hello neighbors!  ", nil, nil
	}, nil)

	got := a.RefineText(context.Background(), "hello", domain.CategoryEvents)

	assert.Equal(t, "Hello neighbors!", got)
}

func TestGenerateImage_FailureAndUnconfiguredReturnNil(t *testing.T) {
	unconfigured, err := NewGeminiAssist(context.Background(), "", zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, unconfigured.GenerateImage(context.Background(), "a park"))

	failing := testAssist(nil, func(ctx context.Context, prompt string) ([]byte, error) {
		return nil, errors.New("quota exceeded")
	})
	assert.Nil(t, failing.GenerateImage(context.Background(), "a park"))
}

func TestGenerateImage_Success(t *testing.T) {
	a := testAssist(nil, func(ctx context.Context, prompt string) ([]byte, error) {
		return []byte{0x89, 0x50}, nil
	})

	assert.Equal(t, []byte{0x89, 0x50}, a.GenerateImage(context.Background(), "a park"))
}

func TestAnalyzeTrends_EmptyCorpusSkipsBackend(t *testing.T) {
	calls := 0
	a := testAssist(func(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, []domain.Place, error) {
		calls++
		return "summary", nil, nil
	}, nil)

	got := a.AnalyzeTrends(context.Background(), nil)

	assert.Equal(t, TrendsEmptyNotice, got)
	assert.Equal(t, 0, calls)
}

func TestAnalyzeTrends_UnconfiguredAndFailing(t *testing.T) {
	unconfigured, err := NewGeminiAssist(context.Background(), "", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, TrendsUnavailableNotice, unconfigured.AnalyzeTrends(context.Background(), []string{"x"}))

	failing := testAssist(failingText, nil)
	assert.Equal(t, TrendsFailedNotice, failing.AnalyzeTrends(context.Background(), []string{"x"}))
}

func TestAnalyzeTrends_SummarizesCorpus(t *testing.T) {
	a := testAssist(func(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, []domain.Place, error) {
		assert.Contains(t, prompt, "lost cat")
		assert.Contains(t, prompt, "block party")
		return "Neighbors talk about pets and parties.", nil, nil
	}, nil)

	got := a.AnalyzeTrends(context.Background(), []string{"lost cat", "block party"})

	assert.Equal(t, "Neighbors talk about pets and parties.", got)
}

func TestSearchPlaces_DefaultsCoordinateWhenNil(t *testing.T) {
	var prompt string
	a := testAssist(func(ctx context.Context, model, p string, config *genai.GenerateContentConfig) (string, []domain.Place, error) {
		prompt = p
		require.NotNil(t, config)
		require.Len(t, config.Tools, 1)
		assert.NotNil(t, config.Tools[0].GoogleSearch)
		return "Try the cafe on Main St.", []domain.Place{{Title: "Main St Cafe", Link: "https://example.com"}}, nil
	}, nil)

	answer := a.SearchPlaces(context.Background(), "coffee nearby", nil)

	assert.Contains(t, prompt, "37.7749")
	assert.Equal(t, "Try the cafe on Main St.", answer.Text)
	require.Len(t, answer.Places, 1)
	assert.Equal(t, "Main St Cafe", answer.Places[0].Title)
}

func TestSearchPlaces_UsesCallerCoordinate(t *testing.T) {
	var prompt string
	a := testAssist(func(ctx context.Context, model, p string, config *genai.GenerateContentConfig) (string, []domain.Place, error) {
		prompt = p
		return "ok", nil, nil
	}, nil)

	a.SearchPlaces(context.Background(), "parks", &domain.LatLng{Lat: 52.5200, Lng: 13.4050})

	assert.Contains(t, prompt, "52.5200")
	assert.Contains(t, prompt, "13.4050")
}

func TestSearchPlaces_FailureYieldsMessageAndNoReferences(t *testing.T) {
	a := testAssist(failingText, nil)

	answer := a.SearchPlaces(context.Background(), "coffee", nil)

	assert.Equal(t, PlacesFailedText, answer.Text)
	assert.Empty(t, answer.Places)
}

func TestStartChat_UnconfiguredReturnsFalse(t *testing.T) {
	a, err := NewGeminiAssist(context.Background(), "", zap.NewNop())
	require.NoError(t, err)

	handle, ok := a.StartChat(context.Background(), "system")

	assert.False(t, ok)
	assert.Nil(t, handle)
}

func TestNotices_AreUserLegible(t *testing.T) {
	for _, notice := range []string{
		RefineUnavailableNotice, TrendsEmptyNotice, TrendsUnavailableNotice,
		TrendsFailedNotice, PlacesFailedText,
	} {
		assert.False(t, strings.Contains(notice, "error"), "notice should not read like an error: %q", notice)
		assert.NotEmpty(t, notice)
	}
}
