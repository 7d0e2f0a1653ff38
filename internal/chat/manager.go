package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"neighborly/internal/core/domain"
	"neighborly/internal/core/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the per-session lifecycle.
type State string

const (
	StateReady    State = "ready"
	StateAwaiting State = "awaiting-response"
	// StateUnavailable is terminal: the backend was unconfigured when the
	// session was opened and no AI turn is possible in it.
	StateUnavailable State = "unavailable"
)

var (
	// ErrEmptyMessage rejects whitespace-only input; the transcript is unchanged.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy rejects a send while a response is still streaming in.
	ErrBusy = errors.New("a response is already in flight")
)

const (
	// SystemPrompt frames every AI-backed conversation.
	SystemPrompt = "You are a helpful neighborhood assistant for a local community app. " +
		"Be concise, friendly and polite. Help neighbors with local questions, " +
		"recommendations and community matters."

	// GreetingText seeds a freshly opened AI conversation.
	GreetingText = "Hi neighbor! I'm your neighborhood assistant. How can I help today?"
	// UnavailableText seeds an AI conversation opened without a configured backend.
	UnavailableText = "The AI assistant is unavailable right now. Add a Gemini API key to enable it."
	// TroubleText is appended when a response stream fails mid-way.
	TroubleText = "Sorry, I'm having trouble connecting right now. Please try again."
	// PeerReplyText is the canned reply of a mock (non-AI) conversation peer.
	PeerReplyText = "Sounds good, thanks for the message! I'll get back to you soon."
)

// Session owns the append-only transcript of one conversation and, for
// AI-backed conversations, the live backend handle. The presentation layer
// only ever sees transcript snapshots.
type Session struct {
	ConversationID string

	mu         sync.Mutex
	state      State
	handle     ports.ChatHandle
	transcript []domain.ChatMessage
	peerDelay  time.Duration
	logger     *zap.Logger
}

// Manager opens and tears down chat sessions. Reopening a conversation whose
// session still exists returns the same session, so chunks that arrived while
// the screen was inactive are visible on revisit.
type Manager struct {
	assist    ports.Assist
	peerDelay time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager. peerDelay is the fixed scripted-reply
// delay for non-AI conversations.
func NewManager(assist ports.Assist, peerDelay time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		assist:    assist,
		peerDelay: peerDelay,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Open returns the session for the conversation, creating and seeding it on
// first open. AI-backed conversations get a live backend handle and a
// greeting, or a terminal unavailable notice when no backend is configured.
// Non-AI conversations get the mock peer transcript and no handle.
func (m *Manager) Open(ctx context.Context, conv domain.Conversation) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[conv.ID]; ok {
		return s
	}

	s := &Session{
		ConversationID: conv.ID,
		state:          StateReady,
		peerDelay:      m.peerDelay,
		logger:         m.logger.With(zap.String("conversation", conv.ID)),
	}

	if conv.AIBacked {
		if handle, ok := m.assist.StartChat(ctx, SystemPrompt); ok {
			s.handle = handle
			s.appendLocked(domain.RoleAssistant, GreetingText)
		} else {
			s.state = StateUnavailable
			s.appendLocked(domain.RoleAssistant, UnavailableText)
		}
	} else {
		s.transcript = append(s.transcript, conv.Seed...)
	}

	m.sessions[conv.ID] = s
	return s
}

// Close tears down the session for a conversation. A stream still in flight
// keeps appending to the detached session's transcript until it finishes;
// nothing renders it because no screen holds the session anymore.
func (m *Manager) Close(conversationID string) {
	m.mu.Lock()
	delete(m.sessions, conversationID)
	m.mu.Unlock()
}

// Reset drops every session, e.g. on logout.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
}

// Send appends the user's message and produces the reply. For a ready
// AI-backed session it appends one empty assistant placeholder and extends it
// in place with each streamed increment; the placeholder's id and position
// never change. A mid-stream failure keeps the partial text and appends a
// separate trouble message. Unavailable sessions answer with a fixed fallback
// and non-AI conversations with a delayed canned peer reply; neither touches
// the backend.
func (s *Session) Send(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state == StateAwaiting {
		s.mu.Unlock()
		return ErrBusy
	}

	if s.state == StateUnavailable {
		s.appendLocked(domain.RoleUser, trimmed)
		s.appendLocked(domain.RoleAssistant, UnavailableText)
		s.mu.Unlock()
		return nil
	}

	s.appendLocked(domain.RoleUser, trimmed)

	if s.handle == nil {
		// Mock peer conversation: scripted reply after a fixed delay.
		s.state = StateAwaiting
		s.mu.Unlock()

		select {
		case <-time.After(s.peerDelay):
		case <-ctx.Done():
			s.mu.Lock()
			s.state = StateReady
			s.mu.Unlock()
			return ctx.Err()
		}

		s.mu.Lock()
		s.appendLocked(domain.RolePeer, PeerReplyText)
		s.state = StateReady
		s.mu.Unlock()
		return nil
	}

	s.state = StateAwaiting
	placeholder := s.appendLocked(domain.RoleAssistant, "")
	s.mu.Unlock()

	var streamErr error
	for chunk, err := range s.handle.Send(ctx, trimmed) {
		if err != nil {
			streamErr = err
			break
		}
		s.mu.Lock()
		s.transcript[placeholder].Text += chunk
		s.mu.Unlock()
	}

	s.mu.Lock()
	if streamErr != nil {
		s.appendLocked(domain.RoleAssistant, TroubleText)
	}
	s.state = StateReady
	s.mu.Unlock()

	if streamErr != nil {
		s.logger.Warn("chat stream failed", zap.Error(streamErr))
	}
	return nil
}

// appendLocked adds a message and returns its index. Callers hold s.mu.
func (s *Session) appendLocked(role domain.Role, text string) int {
	s.transcript = append(s.transcript, domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	})
	return len(s.transcript) - 1
}

// Transcript returns an ordered snapshot of the conversation.
func (s *Session) Transcript() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Streaming reports whether a reply is currently in flight, for the typing
// indicator.
func (s *Session) Streaming() bool {
	return s.State() == StateAwaiting
}
