package domain

import "time"

// Category classifies a feed post. CategoryAll is a filter value only and is
// never stored on a post.
type Category string

const (
	CategoryAll         Category = "All"
	CategoryHelp        Category = "Help"
	CategoryIdeas       Category = "Ideas"
	CategoryEvents      Category = "Events"
	CategoryMarketplace Category = "Marketplace"
	CategorySafety      Category = "Safety"
)

// Concrete reports whether the category may be stored on a post.
func (c Category) Concrete() bool {
	switch c {
	case CategoryHelp, CategoryIdeas, CategoryEvents, CategoryMarketplace, CategorySafety:
		return true
	}
	return false
}

// AlertLevel grades a Safety post.
type AlertLevel string

const (
	AlertInfo      AlertLevel = "info"
	AlertWarning   AlertLevel = "warning"
	AlertEmergency AlertLevel = "emergency"
)

// Post represents one feed item. Posts are owned by the store; callers only
// ever see copies.
type Post struct {
	ID         string
	Author     string
	Category   Category
	Title      string
	Content    string
	Image      []byte // optional generated image, nil when absent
	Price      string
	EventDate  string
	AlertLevel AlertLevel // set only when Category is Safety
	Likes      int
	Comments   int
	Timestamp  string // display string, e.g. "Just now"
	CreatedAt  time.Time
}

// Role identifies the sender of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RolePeer      Role = "peer"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single line of a conversation transcript. Messages are
// append-only; an assistant message may grow in place while a response streams
// in, but its ID never changes.
type ChatMessage struct {
	ID        string
	Role      Role
	Text      string
	CreatedAt time.Time
}

// Conversation describes one entry in the chats list. Non-AI conversations
// carry a seed transcript that stands in for the peer's history.
type Conversation struct {
	ID       string
	Title    string
	AIBacked bool
	Seed     []ChatMessage
}

// ComposeDraft holds the transient state of the post-creation flow. It exists
// only while the create-post screen is active.
type ComposeDraft struct {
	Category        Category // empty until the user picks one
	Title           string
	Content         string
	Price           string
	EventDate       string
	Urgency         AlertLevel
	Image           []byte
	Enhancing       bool
	GeneratingImage bool
}

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64
	Lng float64
}

// Place is one structured location reference returned by a place search.
type Place struct {
	Title string
	Link  string
}

// PlaceAnswer is the result of a place search: a narrative answer plus zero or
// more location references.
type PlaceAnswer struct {
	Text   string
	Places []Place
}
