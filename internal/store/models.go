package store

import "time"

// User is the persisted user record. Only the columns the matching
// core cares about are modeled here; auth owns the rest.
type User struct {
	ID           string `gorm:"primaryKey;size:64"`
	Name         string `gorm:"size:64"`
	Age          int
	Gender       string `gorm:"size:16;index"`
	Country      string `gorm:"size:2;index"`
	Premium      bool
	TokenBalance int64 `gorm:"not null;default:0"`
	Online       bool  `gorm:"index"`
	LastSeenAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenTransaction logs every balance movement.
type TokenTransaction struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      string `gorm:"size:64;index;not null"`
	Amount      int64  `gorm:"not null"`
	Type        string `gorm:"size:32;not null"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
}

// MatchRecord is the durable trace of a pairing.
type MatchRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	RoomID    string `gorm:"size:80;index"`
	User1ID   string `gorm:"size:64;index;not null"`
	User2ID   string `gorm:"size:64;index;not null"`
	CreatedAt time.Time
}

// Message is a persisted in-room chat message.
type Message struct {
	ID         uint   `gorm:"primaryKey"`
	RoomID     string `gorm:"size:80;index;not null"`
	FromUserID string `gorm:"size:64;index;not null"`
	Body       string `gorm:"type:text;not null"`
	CreatedAt  time.Time
}
