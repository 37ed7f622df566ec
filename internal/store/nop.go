package store

import (
	"context"

	"github.com/swipxin/Backendswipxin/internal/domain"
)

// Nop backs the core without a database, for local development. Every
// connecting user gets a free-tier guest profile with a small starter
// balance so the queue gate is passable; writes vanish.
type Nop struct{}

func (Nop) LoadProfile(_ context.Context, userID domain.UserID) (domain.Profile, error) {
	return domain.Profile{
		UserID:       userID,
		Name:         "guest",
		TokenBalance: 1,
	}, nil
}

func (Nop) SetOnline(context.Context, domain.UserID, bool) error { return nil }

func (Nop) DebitTokens(context.Context, []domain.UserID, int64, string) error { return nil }

func (Nop) SaveMatch(context.Context, *domain.Match) error { return nil }

func (Nop) SaveMessage(context.Context, domain.RoomID, domain.UserID, string) error { return nil }
