package ports

import (
	"context"
	"iter"

	"neighborly/internal/core/domain"
)

// Assist is the AI capability surface. Every capability is stateless and
// absorbs backend failures: implementations return a capability-specific
// fallback value instead of an error, so callers never block on AI
// availability.
type Assist interface {
	// Configured reports whether a backend credential is present. When false
	// every capability returns its fixed unavailable result without calling
	// the backend.
	Configured() bool

	// RefineText rewrites a post draft. On any backend failure it returns the
	// original draft unchanged; when unconfigured it returns a fixed
	// key-missing notice.
	RefineText(ctx context.Context, draft string, categoryHint domain.Category) string

	// GenerateImage returns an embeddable image for the prompt, or nil when
	// unconfigured or on any failure. Nil means "no image", not an error.
	GenerateImage(ctx context.Context, prompt string) []byte

	// AnalyzeTrends summarizes a corpus of post bodies. An empty corpus
	// returns a fixed message without touching the backend.
	AnalyzeTrends(ctx context.Context, snippets []string) string

	// SearchPlaces answers a free-text place query near the given coordinate
	// (a fixed default is used when nil). Failures yield a narrative failure
	// message and no references.
	SearchPlaces(ctx context.Context, query string, at *domain.LatLng) domain.PlaceAnswer

	// StartChat opens a streaming conversation primed with the given system
	// framing. The second return is false when the backend is unconfigured.
	StartChat(ctx context.Context, system string) (ChatHandle, bool)
}

// ChatHandle is one live exchange with the assistant. Send yields the
// response as an ordered sequence of text increments; iteration stops early
// on a non-nil error.
type ChatHandle interface {
	Send(ctx context.Context, text string) iter.Seq2[string, error]
}

// Locator provides a one-shot current-position query. Denial or failure is an
// expected outcome and must leave map search usable with a default coordinate.
type Locator interface {
	Current(ctx context.Context) (domain.LatLng, error)
}

// Notifier fans an emergency safety post out to an external channel.
// Implementations never return an error; delivery is best effort.
type Notifier interface {
	SafetyAlert(ctx context.Context, post domain.Post)
}
