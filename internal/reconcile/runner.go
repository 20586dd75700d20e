package reconcile

import (
	"context"
	"fmt"

	"github.com/chxlky/wekan-sync/internal/config"
	"github.com/chxlky/wekan-sync/internal/models"
	"go.uber.org/zap"
)

type Summary struct {
	Boards   int
	Selected int
	Saved    int
	Skipped  int
}

// Runner executes one sequential sync of every board visible to the
// admin user. Any error aborts the run; cards saved before it stay saved.
type Runner struct {
	remote    Remote
	store     Store
	adminUser string
	cfg       config.Sync
	detector  *Detector
	mapper    *Mapper
	users     *UserReconciler
	logger    *zap.Logger
}

func NewRunner(remote Remote, store Store, adminUser string, cfg config.Sync, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.L()
	}
	return &Runner{
		remote:    remote,
		store:     store,
		adminUser: adminUser,
		cfg:       cfg,
		detector:  NewDetector(remote, store, logger),
		mapper:    NewMapper(remote, store, cfg.CompletedField, cfg.HoursMarker, logger),
		users:     NewUserReconciler(remote, store, logger),
		logger:    logger,
	}
}

func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	if r.cfg.PrefetchUsers {
		if err := r.users.Prefetch(ctx); err != nil {
			return summary, fmt.Errorf("prefetch users: %w", err)
		}
	}

	boards, err := r.remote.ListBoards(ctx, r.adminUser)
	if err != nil {
		return summary, fmt.Errorf("list boards: %w", err)
	}

	var global Activity
	if r.cfg.Baseline == config.BaselineGlobal {
		if global, err = GlobalActivity(ctx, r.store); err != nil {
			return summary, fmt.Errorf("read activity baseline: %w", err)
		}
	}

	for _, board := range boards {
		activity := global
		if activity == nil {
			if activity, err = BoardActivity(ctx, r.store, board.ID); err != nil {
				return summary, fmt.Errorf("read activity of board %s: %w", board.ID, err)
			}
		}

		cards, err := r.updatedCards(ctx, board, activity)
		if err != nil {
			return summary, fmt.Errorf("board %s: %w", board.ID, err)
		}

		saved, err := r.users.SaveAll(ctx, board.ID, cards)
		if err != nil {
			return summary, fmt.Errorf("save cards of board %s: %w", board.ID, err)
		}

		summary.Boards++
		summary.Selected += len(cards)
		summary.Saved += saved
		summary.Skipped += len(cards) - saved
	}

	return summary, nil
}

func (r *Runner) updatedCards(ctx context.Context, board models.WekanBoard, activity Activity) ([]*models.Card, error) {
	fieldID, err := r.mapper.CompletedFieldID(ctx, board.ID)
	if err != nil {
		return nil, fmt.Errorf("custom fields: %w", err)
	}

	lists, err := r.remote.ListLists(ctx, board.ID)
	if err != nil {
		return nil, fmt.Errorf("lists: %w", err)
	}

	var updated []*models.Card
	for _, list := range lists {
		changed, err := r.detector.Changed(ctx, board.ID, list.ID, activity)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", list.ID, err)
		}
		for _, card := range changed {
			mapped, err := r.mapper.Map(ctx, board.ID, list, card, fieldID)
			if err != nil {
				return nil, fmt.Errorf("card %s: %w", card.ID, err)
			}
			updated = append(updated, mapped)
		}
	}

	r.logger.Debug("Cards selected", zap.String("boardID", board.ID), zap.String("board", board.Title), zap.Int("count", len(updated)))
	return updated, nil
}
