package nav

import (
	"sync"

	"neighborly/internal/core/domain"
)

// View identifies one top-level screen. Exactly one is active at a time.
type View string

const (
	ViewSplash      View = "splash"
	ViewOnboarding  View = "onboarding"
	ViewAuth        View = "auth"
	ViewHome        View = "home"
	ViewMap         View = "map"
	ViewMarketplace View = "marketplace"
	ViewChats       View = "chats"
	ViewChatDetail  View = "chat-detail"
	ViewProfile     View = "profile"
	ViewAdmin       View = "admin"
	ViewCreatePost  View = "create-post"
)

// Payload carries per-transition sub-state. Only chat-detail uses it today.
type Payload struct {
	ChatID string
}

// backTargets is the static back map. Navigation is flat: one level, no
// history stack. Screens not listed fall back to home.
var backTargets = map[View]View{
	ViewOnboarding:  ViewSplash,
	ViewMap:         ViewHome,
	ViewMarketplace: ViewHome,
	ViewChats:       ViewHome,
	ViewChatDetail:  ViewChats,
	ViewProfile:     ViewHome,
	ViewAdmin:       ViewHome,
	ViewCreatePost:  ViewHome,
}

// Machine is the single source of truth for the active screen and the minimal
// sub-selection needed to render it. Transitions are synchronous and perform
// no I/O.
type Machine struct {
	mu         sync.Mutex
	current    View
	activeChat string
	draft      *domain.ComposeDraft
	draftEpoch uint64
}

// NewMachine starts at the splash screen.
func NewMachine() *Machine {
	return &Machine{current: ViewSplash}
}

// Current returns the active view.
func (m *Machine) Current() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// ActiveChat returns the selected chat id, empty when none.
func (m *Machine) ActiveChat() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeChat
}

// Transition unconditionally activates the target view. A chat-detail target
// needs a chat id in the payload; without one the machine resolves to the
// chats list instead of entering a detail view with no subject.
func (m *Machine) Transition(target View, payload *Payload) View {
	m.mu.Lock()
	defer m.mu.Unlock()

	if target == ViewChatDetail {
		if payload == nil || payload.ChatID == "" {
			target = ViewChats
		} else {
			m.activeChat = payload.ChatID
		}
	}
	m.setLocked(target)
	return m.current
}

// GoBack applies the static back map from the current view and returns the
// new active view.
func (m *Machine) GoBack() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := backTargets[m.current]
	if !ok {
		target = ViewHome
	}
	m.setLocked(target)
	return m.current
}

// setLocked applies screen-scoped lifecycle: the compose draft exists exactly
// while the create-post screen is active, and leaving chat-detail clears the
// selection. Callers hold m.mu.
func (m *Machine) setLocked(target View) {
	if m.current == ViewCreatePost && target != ViewCreatePost {
		m.draft = nil
		m.draftEpoch++
	}
	if target == ViewCreatePost && m.draft == nil {
		m.draft = &domain.ComposeDraft{}
		m.draftEpoch++
	}
	if m.current == ViewChatDetail && target != ViewChatDetail {
		m.activeChat = ""
	}
	m.current = target
}

// Draft returns a snapshot of the compose draft plus the epoch it belongs to,
// or false when the compose flow is not active.
func (m *Machine) Draft() (domain.ComposeDraft, uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil {
		return domain.ComposeDraft{}, m.draftEpoch, false
	}
	return *m.draft, m.draftEpoch, true
}

// UpdateDraft applies fn to the live draft if the given epoch is still
// current. Results of backend calls started under an abandoned draft carry a
// stale epoch and are dropped here, never applied to a later draft.
func (m *Machine) UpdateDraft(epoch uint64, fn func(*domain.ComposeDraft)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil || epoch != m.draftEpoch {
		return false
	}
	fn(m.draft)
	return true
}
