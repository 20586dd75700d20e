package reconcile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chxlky/wekan-sync/integrations"
	"github.com/chxlky/wekan-sync/internal/models"
	"go.uber.org/zap"
)

type CardKey struct {
	BoardID string
	CardID  string
}

// Activity maps a stored card to its last known activity timestamp.
type Activity map[CardKey]time.Time

// BoardActivity reads the activity baseline of one board.
func BoardActivity(ctx context.Context, store Store, boardID string) (Activity, error) {
	cards, err := store.FindCardsByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	activity := make(Activity, len(cards))
	for _, card := range cards {
		activity[CardKey{BoardID: boardID, CardID: card.CardID}] = card.LastActivity
	}
	return activity, nil
}

// GlobalActivity reads the activity baseline of every stored card.
func GlobalActivity(ctx context.Context, store Store) (Activity, error) {
	cards, err := store.FindAllCards(ctx)
	if err != nil {
		return nil, err
	}
	activity := make(Activity, len(cards))
	for _, card := range cards {
		activity[CardKey{BoardID: card.BoardID, CardID: card.CardID}] = card.LastActivity
	}
	return activity, nil
}

// sameActivity compares timestamps at whole-second UTC precision.
func sameActivity(a, b time.Time) bool {
	return a.UTC().Truncate(time.Second).Equal(b.UTC().Truncate(time.Second))
}

// Detector selects the cards of a list that need to be synced.
type Detector struct {
	remote Remote
	store  Store
	logger *zap.Logger
}

func NewDetector(remote Remote, store Store, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.L()
	}
	return &Detector{remote: remote, store: store, logger: logger}
}

// Changed returns the full form of every card in list that is new, has a
// different activity timestamp than the baseline, or is stored with a
// blank title. Cards the API reports as having no content are skipped.
func (d *Detector) Changed(ctx context.Context, boardID, listID string, activity Activity) ([]models.WekanCard, error) {
	summaries, err := d.remote.ListCards(ctx, boardID, listID)
	if err != nil {
		return nil, err
	}

	var changed []models.WekanCard
	for _, summary := range summaries {
		key := CardKey{BoardID: boardID, CardID: summary.ID}

		if summary.DateLastActivity != nil {
			stale, err := d.needsSync(ctx, key, *summary.DateLastActivity, activity)
			if err != nil {
				return nil, err
			}
			if !stale {
				continue
			}
		}

		card, err := d.remote.GetCard(ctx, boardID, listID, summary.ID)
		if err != nil {
			if errors.Is(err, integrations.ErrNoContent) {
				d.logger.Debug("Card has no content, skipping", zap.String("boardID", boardID), zap.String("cardID", summary.ID))
				continue
			}
			return nil, err
		}

		stale, err := d.needsSync(ctx, key, card.DateLastActivity, activity)
		if err != nil {
			return nil, err
		}
		if stale {
			changed = append(changed, *card)
		}
	}
	return changed, nil
}

func (d *Detector) needsSync(ctx context.Context, key CardKey, lastActivity time.Time, activity Activity) (bool, error) {
	cached, ok := activity[key]
	if !ok || !sameActivity(cached, lastActivity) {
		return true, nil
	}

	stored, err := d.store.FindCard(ctx, key.BoardID, key.CardID)
	if err != nil {
		return false, err
	}
	return stored != nil && strings.TrimSpace(stored.Info.Title) == "", nil
}
