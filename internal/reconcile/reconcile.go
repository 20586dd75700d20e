// Package reconcile brings the stored cards in line with Wekan. Only cards
// whose activity changed since the last run are fetched in full, mapped
// and saved.
package reconcile

import (
	"context"

	"github.com/chxlky/wekan-sync/internal/models"
)

// Remote is the read side of the Wekan API used by a run.
type Remote interface {
	ListBoards(ctx context.Context, userID string) ([]models.WekanBoard, error)
	ListLists(ctx context.Context, boardID string) ([]models.WekanList, error)
	ListCustomFields(ctx context.Context, boardID string) ([]models.WekanCustomField, error)
	ListCards(ctx context.Context, boardID, listID string) ([]models.WekanCardSummary, error)
	GetCard(ctx context.Context, boardID, listID, cardID string) (*models.WekanCard, error)
	ListComments(ctx context.Context, boardID, cardID string) ([]models.WekanCommentSummary, error)
	GetComment(ctx context.Context, boardID, cardID, commentID string) (*models.WekanComment, error)
	ListUsers(ctx context.Context) ([]models.WekanUserSummary, error)
	GetUser(ctx context.Context, userID string) (*models.WekanUser, error)
}

// Store is the persistence side of a run. Find methods return nil when
// nothing matches.
type Store interface {
	FindCard(ctx context.Context, boardID, cardID string) (*models.Card, error)
	FindCardsByBoard(ctx context.Context, boardID string) ([]models.Card, error)
	FindAllCards(ctx context.Context) ([]models.Card, error)
	FindUserBySlug(ctx context.Context, slug string) (*models.User, error)
	SaveCard(ctx context.Context, card *models.Card) error
}
