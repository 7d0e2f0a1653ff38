package nav

import (
	"testing"

	"neighborly/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMachine_StartsAtSplash(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, ViewSplash, m.Current())
}

func TestTransition_SetsActiveView(t *testing.T) {
	m := NewMachine()

	got := m.Transition(ViewHome, nil)

	assert.Equal(t, ViewHome, got)
	assert.Equal(t, ViewHome, m.Current())
}

func TestTransition_ChatDetailWithoutIDFallsBackToChats(t *testing.T) {
	m := NewMachine()

	got := m.Transition(ViewChatDetail, nil)
	assert.Equal(t, ViewChats, got)

	got = m.Transition(ViewChatDetail, &Payload{})
	assert.Equal(t, ViewChats, got)
	assert.Empty(t, m.ActiveChat())
}

func TestTransition_ChatDetailStoresSelection(t *testing.T) {
	m := NewMachine()

	got := m.Transition(ViewChatDetail, &Payload{ChatID: "maria"})

	assert.Equal(t, ViewChatDetail, got)
	assert.Equal(t, "maria", m.ActiveChat())
}

func TestGoBack_StaticTargets(t *testing.T) {
	cases := map[View]View{
		ViewCreatePost:  ViewHome,
		ViewAdmin:       ViewHome,
		ViewMap:         ViewHome,
		ViewMarketplace: ViewHome,
		ViewProfile:     ViewHome,
		ViewChats:       ViewHome,
		ViewOnboarding:  ViewSplash,
	}
	for from, want := range cases {
		m := NewMachine()
		m.Transition(from, nil)
		assert.Equal(t, want, m.GoBack(), "back from %s", from)
	}
}

func TestGoBack_ChatDetailReturnsToChatsAndClearsSelection(t *testing.T) {
	m := NewMachine()
	m.Transition(ViewChatDetail, &Payload{ChatID: "maria"})

	got := m.GoBack()

	assert.Equal(t, ViewChats, got)
	assert.Empty(t, m.ActiveChat())
}

func TestDraft_ExistsOnlyWhileComposing(t *testing.T) {
	m := NewMachine()
	m.Transition(ViewHome, nil)

	_, _, ok := m.Draft()
	assert.False(t, ok)

	m.Transition(ViewCreatePost, nil)
	draft, _, ok := m.Draft()
	require.True(t, ok)
	assert.Empty(t, draft.Category)

	m.GoBack()
	_, _, ok = m.Draft()
	assert.False(t, ok)
}

func TestUpdateDraft_AppliesAtCurrentEpoch(t *testing.T) {
	m := NewMachine()
	m.Transition(ViewCreatePost, nil)
	_, epoch, ok := m.Draft()
	require.True(t, ok)

	applied := m.UpdateDraft(epoch, func(d *domain.ComposeDraft) { d.Content = "hello" })

	assert.True(t, applied)
	draft, _, _ := m.Draft()
	assert.Equal(t, "hello", draft.Content)
}

func TestUpdateDraft_DropsStaleResultsAfterNavigation(t *testing.T) {
	m := NewMachine()
	m.Transition(ViewCreatePost, nil)
	_, epoch, ok := m.Draft()
	require.True(t, ok)

	// User abandons the flow while a backend call is still running.
	m.GoBack()
	assert.False(t, m.UpdateDraft(epoch, func(d *domain.ComposeDraft) { d.Content = "late" }))

	// A later compose flow must not receive the stale result either.
	m.Transition(ViewCreatePost, nil)
	assert.False(t, m.UpdateDraft(epoch, func(d *domain.ComposeDraft) { d.Content = "late" }))

	draft, _, _ := m.Draft()
	assert.Empty(t, draft.Content)
}
