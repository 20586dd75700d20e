package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chxlky/wekan-sync/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRecordTooLarge is returned by SaveCard when the encoded card exceeds
// the configured record size limit.
var ErrRecordTooLarge = errors.New("record exceeds size limit")

type Store struct {
	db             *gorm.DB
	maxRecordBytes int
}

// NewStore wraps db. A maxRecordBytes of zero disables the size check.
func NewStore(db *gorm.DB, maxRecordBytes int) *Store {
	return &Store{db: db, maxRecordBytes: maxRecordBytes}
}

// FindCard returns the card stored under (boardID, cardID), or nil.
func (s *Store) FindCard(ctx context.Context, boardID, cardID string) (*models.Card, error) {
	var cards []models.Card
	err := s.db.WithContext(ctx).
		Preload("Users").
		Where("board_id = ? AND card_id = ?", boardID, cardID).
		Limit(1).
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find card %s/%s: %w", boardID, cardID, err)
	}
	if len(cards) == 0 {
		return nil, nil
	}
	return &cards[0], nil
}

// FindCardByID returns the first card with cardID on any board, or nil.
func (s *Store) FindCardByID(ctx context.Context, cardID string) (*models.Card, error) {
	var cards []models.Card
	err := s.db.WithContext(ctx).
		Preload("Users").
		Where("card_id = ?", cardID).
		Order("id").
		Limit(1).
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find card %s: %w", cardID, err)
	}
	if len(cards) == 0 {
		return nil, nil
	}
	return &cards[0], nil
}

func (s *Store) FindCardsByBoard(ctx context.Context, boardID string) ([]models.Card, error) {
	var cards []models.Card
	err := s.db.WithContext(ctx).
		Preload("Users").
		Where("board_id = ?", boardID).
		Order("id").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cards of board %s: %w", boardID, err)
	}
	return cards, nil
}

func (s *Store) FindAllCards(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	if err := s.db.WithContext(ctx).Preload("Users").Order("id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (s *Store) FindUserBySlug(ctx context.Context, slug string) (*models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).Limit(1).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", slug, err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// upsert inserts card or, when (board_id, card_id) already exists,
// replaces the stored columns with card's values. The user relation is
// not touched.
func upsert(tx *gorm.DB, card *models.Card) error {
	err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "board_id"}, {Name: "card_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "completed", "last_activity", "info", "updated_at"}),
	}).Create(card).Error
	if err != nil {
		return fmt.Errorf("failed to upsert card %s/%s: %w", card.BoardID, card.CardID, err)
	}
	if card.ID == 0 {
		// Some drivers do not return the id of a conflicting row.
		if err := tx.Model(&models.Card{}).
			Where("board_id = ? AND card_id = ?", card.BoardID, card.CardID).
			Pluck("id", &card.ID).Error; err != nil {
			return fmt.Errorf("failed to resolve card id %s/%s: %w", card.BoardID, card.CardID, err)
		}
	}
	return nil
}

// SaveCard persists card and replaces its user relation with card.Users.
// Each call commits on its own.
func (s *Store) SaveCard(ctx context.Context, card *models.Card) error {
	if s.maxRecordBytes > 0 {
		encoded, err := json.Marshal(card)
		if err != nil {
			return fmt.Errorf("failed to encode card %s/%s: %w", card.BoardID, card.CardID, err)
		}
		if len(encoded) > s.maxRecordBytes {
			return fmt.Errorf("card %s/%s is %d bytes, limit %d: %w",
				card.BoardID, card.CardID, len(encoded), s.maxRecordBytes, ErrRecordTooLarge)
		}
	}

	users := card.Users
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if card.ID == 0 {
			if err := upsert(tx, card); err != nil {
				return err
			}
		} else if err := tx.Omit(clause.Associations).Save(card).Error; err != nil {
			return fmt.Errorf("failed to save card %s/%s: %w", card.BoardID, card.CardID, err)
		}

		association := tx.Model(card).Association("Users")
		var err error
		if len(users) == 0 {
			err = association.Clear()
		} else {
			err = association.Replace(users)
		}
		if err != nil {
			return fmt.Errorf("failed to replace users of card %s/%s: %w", card.BoardID, card.CardID, err)
		}
		card.Users = users
		return nil
	})
}
