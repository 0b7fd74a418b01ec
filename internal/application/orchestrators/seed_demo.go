package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bookswap/internal/domain/failure"
	"bookswap/internal/domain/listing"
	"bookswap/internal/domain/message"
	"bookswap/internal/domain/user"
)

// Demo user IDs are fixed so the seed can detect a previous run.
const (
	DemoSellerID = "demo-seller"
	DemoBuyerID  = "demo-buyer"
	DemoLurkerID = "demo-lurker"
)

type seedDirectory interface {
	GetUser(ctx context.Context, id string) (user.User, error)
	SaveUser(ctx context.Context, u user.User) error
	SaveBook(ctx context.Context, b listing.Book) error
}

// SeedDemoDeps holds stores needed for demo seeding.
type SeedDemoDeps struct {
	Directory  seedDirectory
	Messages   MessageAppender
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSeedDemo loads a small marketplace for local development:
// three users, two listings and one short conversation.
// PRE: only called when seeding is enabled outside production
// POST: Demo data exists; returns false without writing if it already did
func ExecuteSeedDemo(ctx context.Context, deps SeedDemoDeps) (bool, error) {
	_, err := deps.Directory.GetUser(ctx, DemoSellerID)
	if err == nil {
		slog.Info("seed_event", "event", "demo_seed_skipped", "reason", "already seeded")
		return false, nil
	}
	if !failure.Is(err, failure.KindNotFound) {
		return false, fmt.Errorf("check demo seed: %w", err)
	}

	now := deps.Now().UTC()
	users := []user.User{
		{ID: DemoSellerID, DisplayName: "Sam Seller", CreatedAt: now},
		{ID: DemoBuyerID, DisplayName: "Bea Buyer", CreatedAt: now},
		{ID: DemoLurkerID, DisplayName: "Lou Lurker", CreatedAt: now},
	}
	for _, u := range users {
		if err := deps.Directory.SaveUser(ctx, u); err != nil {
			return false, fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}

	books := []listing.Book{
		{ID: deps.GenerateID(), OwnerID: DemoSellerID, Name: "The Left Hand of Darkness", PriceCents: 850},
		{ID: deps.GenerateID(), OwnerID: DemoBuyerID, Name: "A Wizard of Earthsea", PriceCents: 600},
	}
	for _, b := range books {
		if err := deps.Directory.SaveBook(ctx, b); err != nil {
			return false, fmt.Errorf("seed book %s: %w", b.Name, err)
		}
	}

	conversation := []message.Message{
		{SenderID: DemoBuyerID, ReceiverID: DemoSellerID, BookID: books[0].ID, Body: "Is this still available?", SentAt: now.Add(-2 * time.Hour)},
		{SenderID: DemoSellerID, ReceiverID: DemoBuyerID, BookID: books[0].ID, Body: "Yes, pickup any evening this week.", SentAt: now.Add(-time.Hour)},
	}
	for _, m := range conversation {
		if _, err := deps.Messages.Append(ctx, m); err != nil {
			return false, fmt.Errorf("seed message: %w", err)
		}
	}

	slog.Info("seed_event", "event", "demo_seeded", "users", len(users), "books", len(books), "messages", len(conversation))
	return true, nil
}
