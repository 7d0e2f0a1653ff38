package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"neighborly/internal/app"
	"neighborly/internal/brain"
	"neighborly/internal/chat"
	"neighborly/internal/config"
	"neighborly/internal/core/domain"
	"neighborly/internal/core/ports"
	"neighborly/internal/nav"
	"neighborly/internal/notify"
	"neighborly/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	godotenv.Load()
	fmt.Println("🏘️  Neighborly Engine Starting...")

	ctx := context.Background()
	cfg := config.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	assist, err := brain.NewGeminiAssist(ctx, cfg.GeminiAPIKey, logger)
	if err != nil {
		logger.Fatal("assist gateway", zap.Error(err))
	}
	if assist.Configured() {
		fmt.Println("✨ AI assist: Gemini connected")
	} else {
		fmt.Println("💤 AI assist: degraded mode (no API key)")
	}

	notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, logger)
	if err != nil {
		logger.Fatal("telegram notifier", zap.Error(err))
	}
	if notifier.Enabled() {
		fmt.Println("📣 Safety alerts: Telegram enabled")
	}

	posts := store.NewMemoryStore(seedPosts(), logger)
	sessions := chat.NewManager(assist, cfg.PeerReplyDelay, logger)
	machine := nav.NewMachine()
	engine := app.New(machine, posts, assist, sessions, notifier, envLocator{}, seedConversations(), logger)

	// Splash -> onboarding -> login -> home, as the app shell would drive it.
	engine.StartSplash(ctx, cfg.SplashDelay)
	engine.Navigate(nav.ViewAuth, nil)
	engine.Navigate(nav.ViewHome, nil)

	fmt.Println("🚀 Ready. Type 'help' for commands.")
	repl(ctx, engine)
}

func repl(ctx context.Context, engine *app.Engine) {
	reader := bufio.NewReader(os.Stdin)
	var session *chat.Session

	for {
		fmt.Printf("\n[%s] > ", engine.View())
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")

		switch cmd {
		case "help":
			fmt.Println("feed [category] | compose <category> | write <text> | enhance | image <prompt> | submit")
			fmt.Println("chats | open <id> | say <text> | trends | places <query> | admin | delete <id> | back | logout | quit")
		case "feed":
			c := domain.CategoryAll
			if arg != "" {
				c = domain.Category(arg)
			}
			for _, p := range engine.Feed(c) {
				fmt.Printf("  [%s] %s — %s (%s) ❤️ %d 💬 %d  id=%s\n",
					p.Category, p.Title, p.Content, p.Timestamp, p.Likes, p.Comments, p.ID)
			}
		case "compose":
			engine.StartCompose()
			engine.EditDraft(func(d *domain.ComposeDraft) { d.Category = domain.Category(arg) })
		case "write":
			if err := engine.EditDraft(func(d *domain.ComposeDraft) { d.Content = arg }); err != nil {
				fmt.Println("⚠️ ", err)
			}
		case "enhance":
			engine.EnhanceDraft(ctx)
			if d, ok := engine.Draft(); ok {
				fmt.Println("📝", d.Content)
			}
		case "image":
			engine.GenerateDraftImage(ctx, arg)
			if d, ok := engine.Draft(); ok && d.Image != nil {
				fmt.Printf("🖼️  attached image (%d bytes)\n", len(d.Image))
			} else {
				fmt.Println("🖼️  no image")
			}
		case "submit":
			if p, err := engine.SubmitDraft(ctx); err != nil {
				fmt.Println("⚠️ ", err)
			} else {
				fmt.Println("✅ posted", p.ID)
			}
		case "chats":
			engine.Navigate(nav.ViewChats, nil)
			for i, c := range engine.Conversations() {
				kind := "peer"
				if c.AIBacked {
					kind = "AI"
				}
				fmt.Printf("  %d. %s (%s) id=%s\n", i+1, c.Title, kind, c.ID)
			}
		case "open":
			convs := engine.Conversations()
			id := arg
			if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(convs) {
				id = convs[n-1].ID
			}
			s, err := engine.OpenChat(ctx, id)
			if err != nil {
				fmt.Println("⚠️ ", err)
				continue
			}
			session = s
			printTranscript(session)
		case "say":
			if session == nil {
				fmt.Println("⚠️  open a chat first")
				continue
			}
			if err := session.Send(ctx, arg); err != nil {
				fmt.Println("⚠️ ", err)
				continue
			}
			printTranscript(session)
		case "trends":
			fmt.Println("📊", engine.Trends(ctx))
		case "places":
			answer := engine.SearchNearby(ctx, arg)
			fmt.Println("📍", answer.Text)
			for _, place := range answer.Places {
				fmt.Printf("   - %s (%s)\n", place.Title, place.Link)
			}
		case "admin":
			engine.Navigate(nav.ViewAdmin, nil)
		case "delete":
			engine.DeletePost(arg)
		case "back":
			engine.GoBack()
		case "logout":
			session = nil
			engine.SignOut()
		case "quit", "exit":
			fmt.Println("👋 bye")
			return
		case "":
		default:
			fmt.Println("⚠️  unknown command, try 'help'")
		}
	}
}

func printTranscript(s *chat.Session) {
	for _, m := range s.Transcript() {
		fmt.Printf("  %s: %s\n", m.Role, m.Text)
	}
}

// envLocator reads a fixed position from the environment, standing in for the
// browser geolocation capability. Missing or bad values count as a denial.
type envLocator struct{}

var _ ports.Locator = envLocator{}

func (envLocator) Current(ctx context.Context) (domain.LatLng, error) {
	lat, err1 := strconv.ParseFloat(os.Getenv("USER_LAT"), 64)
	lng, err2 := strconv.ParseFloat(os.Getenv("USER_LNG"), 64)
	if err1 != nil || err2 != nil {
		return domain.LatLng{}, fmt.Errorf("no position configured")
	}
	return domain.LatLng{Lat: lat, Lng: lng}, nil
}

func seedPosts() []domain.Post {
	now := time.Now()
	return []domain.Post{
		{
			ID: "seed-1", Author: "Maria G.", Category: domain.CategoryHelp,
			Title: "Need a ladder this weekend", Content: "Cleaning the gutters on Saturday, can anyone lend a tall ladder?",
			Likes: 4, Comments: 2, Timestamp: "2h ago", CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID: "seed-2", Author: "Tom B.", Category: domain.CategoryEvents,
			Title: "Block party next Friday", Content: "Annual block party on Elm Street, bring a dish to share!",
			EventDate: "Fri 18:00", Likes: 12, Comments: 7, Timestamp: "5h ago", CreatedAt: now.Add(-5 * time.Hour),
		},
		{
			ID: "seed-3", Author: "Priya S.", Category: domain.CategoryMarketplace,
			Title: "Kids bike for sale", Content: "16-inch kids bike, barely used. Pickup only.",
			Price: "$45", Likes: 3, Comments: 1, Timestamp: "1d ago", CreatedAt: now.Add(-24 * time.Hour),
		},
		{
			ID: "seed-4", Author: "Dan K.", Category: domain.CategorySafety,
			Title: "Car break-in on Oak Ave", Content: "Someone broke into a parked car last night near the corner of Oak and 3rd. Check your cameras.",
			AlertLevel: domain.AlertWarning, Likes: 9, Comments: 5, Timestamp: "1d ago", CreatedAt: now.Add(-26 * time.Hour),
		},
	}
}

func seedConversations() []domain.Conversation {
	return []domain.Conversation{
		{ID: "assistant", Title: "Neighborhood Assistant", AIBacked: true},
		{
			ID: "maria", Title: "Maria G.",
			Seed: []domain.ChatMessage{
				{ID: "m1", Role: domain.RolePeer, Text: "Hey! Did you see my post about the ladder?", CreatedAt: time.Now().Add(-time.Hour)},
			},
		},
		{
			ID: "tom", Title: "Tom B.",
			Seed: []domain.ChatMessage{
				{ID: "t1", Role: domain.RolePeer, Text: "You're coming to the block party, right?", CreatedAt: time.Now().Add(-3 * time.Hour)},
			},
		},
	}
}
