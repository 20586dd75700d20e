package models

import "time"

// Card is the persisted view of a remote card. (BoardID, CardID) is unique.
type Card struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	BoardID      string    `gorm:"not null;uniqueIndex:idx_board_card" json:"board_id"`
	CardID       string    `gorm:"not null;uniqueIndex:idx_board_card;index" json:"card_id"`
	Status       Status    `gorm:"not null;default:'UNKNOWN'" json:"status"`
	Completed    bool      `json:"completed"`
	LastActivity time.Time `json:"last_activity"`
	Info         CardInfo  `gorm:"serializer:json" json:"info"`
	Users        []User    `gorm:"many2many:card_users;" json:"users"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// CardInfo is stored as an embedded JSON document.
type CardInfo struct {
	Title      string     `json:"title"`
	Hours      int64      `json:"hours"`
	Timestamp  *time.Time `json:"timestamp"`
	Assignees  []string   `json:"assignees"`
	StartAt    *time.Time `json:"start_at"`
	DueAt      *time.Time `json:"due_at"`
	EndAt      *time.Time `json:"end_at"`
	ReceivedAt *time.Time `json:"received_at"`
}

// User is a local account matched to Wekan users by email slug.
// Rows are managed elsewhere; the sync only reads them.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Slug      string    `gorm:"not null;uniqueIndex" json:"slug"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"-"`
}
