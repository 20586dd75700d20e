package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chxlky/wekan-sync/database"
	"github.com/chxlky/wekan-sync/internal/models"
	"go.uber.org/zap"
)

// UserReconciler binds stored cards to local users and saves them.
// Wekan users are fetched at most once per reconciler.
type UserReconciler struct {
	remote Remote
	store  Store
	logger *zap.Logger
	cache  map[string]*models.WekanUser
}

func NewUserReconciler(remote Remote, store Store, logger *zap.Logger) *UserReconciler {
	if logger == nil {
		logger = zap.L()
	}
	return &UserReconciler{
		remote: remote,
		store:  store,
		logger: logger,
		cache:  make(map[string]*models.WekanUser),
	}
}

// Prefetch loads every Wekan user up front.
func (r *UserReconciler) Prefetch(ctx context.Context) error {
	summaries, err := r.remote.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, summary := range summaries {
		if _, err := r.user(ctx, summary.ID); err != nil {
			return err
		}
	}
	r.logger.Info("Users prefetched", zap.Int("count", len(r.cache)))
	return nil
}

func (r *UserReconciler) user(ctx context.Context, id string) (*models.WekanUser, error) {
	if u, ok := r.cache[id]; ok {
		return u, nil
	}
	u, err := r.remote.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache[id] = u
	return u, nil
}

// Slug returns the local part of an email address.
func Slug(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Resolve replaces card.Users with the local users matching the card's
// Wekan assignees. Assignees without an email are ignored; those without
// a local user are dropped with a warning.
func (r *UserReconciler) Resolve(ctx context.Context, card *models.Card) error {
	users := make([]models.User, 0, len(card.Info.Assignees))
	for _, assignee := range card.Info.Assignees {
		remote, err := r.user(ctx, assignee)
		if err != nil {
			return err
		}
		if len(remote.Emails) == 0 {
			continue
		}

		slug := Slug(remote.Emails[0].Address)
		local, err := r.store.FindUserBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if local == nil {
			r.logger.Warn("No such user in database.",
				zap.String("slug", slug),
				zap.String("boardID", card.BoardID),
				zap.String("cardID", card.CardID),
			)
			continue
		}
		users = append(users, *local)
	}
	card.Users = users
	return nil
}

// SaveAll resolves and saves cards one by one and returns how many were
// written. Cards over the record size limit are logged and skipped.
func (r *UserReconciler) SaveAll(ctx context.Context, boardID string, cards []*models.Card) (int, error) {
	saved := 0
	for _, card := range cards {
		if err := r.Resolve(ctx, card); err != nil {
			return saved, err
		}
		if err := r.store.SaveCard(ctx, card); err != nil {
			if errors.Is(err, database.ErrRecordTooLarge) {
				r.logger.Warn("Card not saved", zap.Error(err))
				continue
			}
			return saved, err
		}
		saved++
	}
	r.logger.Info(fmt.Sprintf("%d card(s) from board '%s' saved", saved, boardID))
	return saved, nil
}
