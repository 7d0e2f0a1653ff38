package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"neighborly/internal/chat"
	"neighborly/internal/core/domain"
	"neighborly/internal/core/ports"
	"neighborly/internal/nav"
	"neighborly/internal/store"

	"go.uber.org/zap"
)

var (
	// ErrNoDraft is returned when a compose operation runs outside the
	// create-post screen.
	ErrNoDraft = errors.New("no compose draft is active")
	// ErrUnknownConversation is returned by OpenChat for an id that is not in
	// the chats directory.
	ErrUnknownConversation = errors.New("unknown conversation")
)

// Engine is the application interaction engine: it owns the view-state
// machine, the post store, the chat sessions and the AI gateway, and exposes
// the operations the presentation layer drives. Transitions and store
// mutations are synchronous; only AI calls and fixed-delay timers suspend.
type Engine struct {
	machine       *nav.Machine
	store         *store.MemoryStore
	assist        ports.Assist
	chats         *chat.Manager
	notifier      ports.Notifier
	locator       ports.Locator
	conversations []domain.Conversation
	author        string
	logger        *zap.Logger
}

// New wires the engine. notifier and locator may be nil; the corresponding
// features degrade silently.
func New(
	m *nav.Machine,
	s *store.MemoryStore,
	assist ports.Assist,
	chats *chat.Manager,
	notifier ports.Notifier,
	locator ports.Locator,
	conversations []domain.Conversation,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		machine:       m,
		store:         s,
		assist:        assist,
		chats:         chats,
		notifier:      notifier,
		locator:       locator,
		conversations: conversations,
		author:        "You",
		logger:        logger,
	}
}

// View returns the active screen.
func (e *Engine) View() nav.View { return e.machine.Current() }

// Navigate activates a screen. Chat-detail should be entered through
// OpenChat; a bare chat-detail transition falls back to the chats list.
func (e *Engine) Navigate(target nav.View, payload *nav.Payload) nav.View {
	return e.machine.Transition(target, payload)
}

// GoBack applies the per-screen back target. Leaving the compose screen
// abandons the draft; leaving a chat keeps its session so a stream still in
// flight lands in the transcript and the conversation is intact on revisit.
func (e *Engine) GoBack() nav.View {
	return e.machine.GoBack()
}

// StartSplash advances from the splash screen to onboarding after the given
// delay. It returns early if the context is cancelled or the user already
// navigated elsewhere.
func (e *Engine) StartSplash(ctx context.Context, delay time.Duration) {
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return
	}
	if e.machine.Current() == nav.ViewSplash {
		e.machine.Transition(nav.ViewOnboarding, nil)
	}
}

// SignOut drops all chat sessions and returns to the login screen. Logout is
// a transition, not a process exit.
func (e *Engine) SignOut() nav.View {
	e.chats.Reset()
	return e.machine.Transition(nav.ViewAuth, nil)
}

// Feed returns the current post list, optionally filtered by category.
func (e *Engine) Feed(c domain.Category) []domain.Post {
	return e.store.ListByCategory(c)
}

// DeletePost removes a post on behalf of the admin flow. Confirmation of
// intent is the caller's job; deletion of an unknown id is a no-op.
func (e *Engine) DeletePost(id string) {
	e.store.Delete(id)
}

// Trends summarizes the current feed through the AI gateway. Degrades to
// fixed messages when the feed is empty or the backend is unavailable.
func (e *Engine) Trends(ctx context.Context) string {
	return e.assist.AnalyzeTrends(ctx, e.store.Contents())
}

// SearchNearby answers a map-search query. Geolocation denial or failure is
// absorbed: the gateway falls back to its default coordinate.
func (e *Engine) SearchNearby(ctx context.Context, query string) domain.PlaceAnswer {
	var at *domain.LatLng
	if e.locator != nil {
		if pos, err := e.locator.Current(ctx); err == nil {
			at = &pos
		} else {
			e.logger.Debug("geolocation unavailable, using default coordinate", zap.Error(err))
		}
	}
	return e.assist.SearchPlaces(ctx, query, at)
}

// Conversations returns the chats directory.
func (e *Engine) Conversations() []domain.Conversation {
	out := make([]domain.Conversation, len(e.conversations))
	copy(out, e.conversations)
	return out
}

// OpenChat opens (or resumes) the conversation and shows its detail screen.
// An unknown id resolves to the chats list.
func (e *Engine) OpenChat(ctx context.Context, conversationID string) (*chat.Session, error) {
	for _, conv := range e.conversations {
		if conv.ID == conversationID {
			s := e.chats.Open(ctx, conv)
			e.machine.Transition(nav.ViewChatDetail, &nav.Payload{ChatID: conv.ID})
			return s, nil
		}
	}
	e.machine.Transition(nav.ViewChats, nil)
	return nil, ErrUnknownConversation
}

// StartCompose enters the post-creation flow with a fresh draft.
func (e *Engine) StartCompose() nav.View {
	return e.machine.Transition(nav.ViewCreatePost, nil)
}

// Draft returns a snapshot of the active compose draft.
func (e *Engine) Draft() (domain.ComposeDraft, bool) {
	d, _, ok := e.machine.Draft()
	return d, ok
}

// EditDraft applies a synchronous edit to the active draft.
func (e *Engine) EditDraft(fn func(*domain.ComposeDraft)) error {
	_, epoch, ok := e.machine.Draft()
	if !ok {
		return ErrNoDraft
	}
	e.machine.UpdateDraft(epoch, fn)
	return nil
}

// EnhanceDraft rewrites the draft body through the AI gateway. It blocks for
// the duration of the call, so run it off the render goroutine. If the user
// leaves the compose screen before the call returns, the result is dropped,
// never applied to a discarded or later draft.
func (e *Engine) EnhanceDraft(ctx context.Context) {
	draft, epoch, ok := e.machine.Draft()
	if !ok || strings.TrimSpace(draft.Content) == "" {
		return
	}
	if !e.machine.UpdateDraft(epoch, func(d *domain.ComposeDraft) { d.Enhancing = true }) {
		return
	}

	refined := e.assist.RefineText(ctx, draft.Content, draft.Category)

	if !e.machine.UpdateDraft(epoch, func(d *domain.ComposeDraft) {
		d.Content = refined
		d.Enhancing = false
	}) {
		e.logger.Debug("refined text dropped, compose flow abandoned")
	}
}

// GenerateDraftImage attaches an AI-generated image to the draft. Like
// EnhanceDraft it blocks, and a result arriving after the flow was abandoned
// is dropped. A nil image means "no image" and leaves the draft untouched.
func (e *Engine) GenerateDraftImage(ctx context.Context, prompt string) {
	_, epoch, ok := e.machine.Draft()
	if !ok || strings.TrimSpace(prompt) == "" {
		return
	}
	if !e.machine.UpdateDraft(epoch, func(d *domain.ComposeDraft) { d.GeneratingImage = true }) {
		return
	}

	img := e.assist.GenerateImage(ctx, prompt)

	if !e.machine.UpdateDraft(epoch, func(d *domain.ComposeDraft) {
		if img != nil {
			d.Image = img
		}
		d.GeneratingImage = false
	}) {
		e.logger.Debug("generated image dropped, compose flow abandoned")
	}
}

// SubmitDraft turns the draft into a stored post and returns to the home
// screen. Validation failures leave both the draft and the store unchanged.
// An emergency safety post additionally fans out to the alert notifier.
func (e *Engine) SubmitDraft(ctx context.Context) (domain.Post, error) {
	draft, _, ok := e.machine.Draft()
	if !ok {
		return domain.Post{}, ErrNoDraft
	}

	created, err := e.store.Create(domain.Post{
		Author:     e.author,
		Category:   draft.Category,
		Title:      draft.Title,
		Content:    draft.Content,
		Image:      draft.Image,
		Price:      draft.Price,
		EventDate:  draft.EventDate,
		AlertLevel: draft.Urgency,
	})
	if err != nil {
		return domain.Post{}, err
	}

	if e.notifier != nil &&
		created.Category == domain.CategorySafety &&
		created.AlertLevel == domain.AlertEmergency {
		e.notifier.SafetyAlert(ctx, created)
	}

	e.machine.Transition(nav.ViewHome, nil)
	return created, nil
}
