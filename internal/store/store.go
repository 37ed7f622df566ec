// Package store is the relational boundary of the matching core:
// presence flags, the token ledger and match/message records. Every
// method is called best-effort by the core; failures here must never
// leak into the pairing state machine.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/swipxin/Backendswipxin/internal/config"
	"github.com/swipxin/Backendswipxin/internal/domain"
)

type Store struct {
	db *gorm.DB
}

func Connect(cfg *config.Config) (*Store, error) {
	logLevel := gormlogger.Error
	if cfg.Mode == "debug" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(logLevel),
		NowFunc:                func() time.Time { return time.Now().UTC() },
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info().Str("module", "store").Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("database connected")
	return &Store{db: db}, nil
}

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&User{},
		&TokenTransaction{},
		&MatchRecord{},
		&Message{},
	)
}

// LoadProfile loads the cached matching fields for a user.
func (s *Store) LoadProfile(ctx context.Context, userID domain.UserID) (domain.Profile, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", string(userID)).Error; err != nil {
		return domain.Profile{}, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return domain.Profile{
		UserID:       userID,
		Name:         u.Name,
		Age:          u.Age,
		Gender:       u.Gender,
		Country:      u.Country,
		Premium:      u.Premium,
		TokenBalance: u.TokenBalance,
	}, nil
}

// SetOnline flips the persisted presence flag.
func (s *Store) SetOnline(ctx context.Context, userID domain.UserID, online bool) error {
	err := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", string(userID)).
		Updates(map[string]any{"online": online, "last_seen_at": time.Now().UTC()}).Error
	if err != nil {
		return fmt.Errorf("set online %s: %w", userID, err)
	}
	return nil
}

// DebitTokens charges each user for a pairing. The UPDATE floors the
// balance at zero, so a user short of the full cost pays what they
// have and never goes negative. Each debit logs a transaction row with
// the amount actually charged.
func (s *Store) DebitTokens(ctx context.Context, userIDs []domain.UserID, amount int64, reason string) error {
	for _, id := range userIDs {
		uid := string(id)
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var before int64
			if err := tx.Model(&User{}).Select("token_balance").Where("id = ?", uid).Scan(&before).Error; err != nil {
				return err
			}
			res := tx.Model(&User{}).Where("id = ?", uid).
				Update("token_balance", gorm.Expr("GREATEST(token_balance - ?, 0)", amount))
			if res.Error != nil {
				return res.Error
			}
			charged := amount
			if before < amount {
				charged = before
			}
			return tx.Create(&TokenTransaction{
				UserID:      uid,
				Amount:      -charged,
				Type:        "match_debit",
				Description: reason,
			}).Error
		})
		if err != nil {
			return fmt.Errorf("debit %s: %w", uid, err)
		}
	}
	return nil
}

// SaveMatch persists the match record.
func (s *Store) SaveMatch(ctx context.Context, m *domain.Match) error {
	rec := MatchRecord{
		ID:        string(m.ID),
		RoomID:    string(m.RoomID),
		User1ID:   string(m.Users[0]),
		User2ID:   string(m.Users[1]),
		CreatedAt: m.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("save match %s: %w", m.ID, err)
	}
	return nil
}

// SaveMessage persists an in-room chat message.
func (s *Store) SaveMessage(ctx context.Context, roomID domain.RoomID, from domain.UserID, text string) error {
	msg := Message{RoomID: string(roomID), FromUserID: string(from), Body: text}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}
