package database

import (
	"context"
	"sort"

	"github.com/chxlky/wekan-sync/internal/models"
)

// UserHours aggregates the stored cards of one local user.
type UserHours struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Hours     int64  `json:"hours"`
	Cards     int    `json:"cards"`
	Completed int    `json:"completed"`
}

// HoursByUser sums logged hours per resolved assignee. An empty boardID
// covers every board.
func (s *Store) HoursByUser(ctx context.Context, boardID string) ([]UserHours, error) {
	var (
		cards []models.Card
		err   error
	)
	if boardID == "" {
		cards, err = s.FindAllCards(ctx)
	} else {
		cards, err = s.FindCardsByBoard(ctx, boardID)
	}
	if err != nil {
		return nil, err
	}

	bySlug := make(map[string]*UserHours)
	for _, card := range cards {
		for _, user := range card.Users {
			row, ok := bySlug[user.Slug]
			if !ok {
				row = &UserHours{Slug: user.Slug, Name: user.Name}
				bySlug[user.Slug] = row
			}
			row.Hours += card.Info.Hours
			row.Cards++
			if card.Completed {
				row.Completed++
			}
		}
	}

	report := make([]UserHours, 0, len(bySlug))
	for _, row := range bySlug {
		report = append(report, *row)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Slug < report[j].Slug })
	return report, nil
}
