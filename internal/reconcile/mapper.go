package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chxlky/wekan-sync/integrations"
	"github.com/chxlky/wekan-sync/internal/models"
	"go.uber.org/zap"
)

// Mapper turns fully fetched Wekan cards into stored cards.
type Mapper struct {
	remote         Remote
	store          Store
	completedField string
	hoursMarker    string
	logger         *zap.Logger
}

func NewMapper(remote Remote, store Store, completedField, hoursMarker string, logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.L()
	}
	return &Mapper{
		remote:         remote,
		store:          store,
		completedField: completedField,
		hoursMarker:    hoursMarker,
		logger:         logger,
	}
}

// CompletedFieldID returns the id of the board's completion custom field,
// or "" when the board does not define it.
func (m *Mapper) CompletedFieldID(ctx context.Context, boardID string) (string, error) {
	fields, err := m.remote.ListCustomFields(ctx, boardID)
	if err != nil {
		return "", err
	}
	for _, field := range fields {
		if field.Name == m.completedField {
			return field.ID, nil
		}
	}
	return "", nil
}

// Map loads or creates the stored card for (boardID, card.ID) and fills it
// from card. The result is neither user-resolved nor saved.
func (m *Mapper) Map(ctx context.Context, boardID string, list models.WekanList, card models.WekanCard, completedFieldID string) (*models.Card, error) {
	stored, err := m.store.FindCard(ctx, boardID, card.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		stored = &models.Card{BoardID: boardID, CardID: card.ID}
	}

	timestamp, err := m.completionTimestamp(ctx, boardID, card.ID)
	if err != nil {
		return nil, err
	}

	stored.Status = models.StatusFromListTitle(list.Title)
	stored.Completed = completed(completedFieldID, card.CustomFields)
	stored.LastActivity = card.DateLastActivity
	stored.Info = models.CardInfo{
		Title:      card.Title,
		Hours:      Hours(card.SpentTime),
		Timestamp:  timestamp,
		Assignees:  card.Assignees,
		StartAt:    card.StartAt,
		DueAt:      card.DueAt,
		EndAt:      card.EndAt,
		ReceivedAt: card.ReceivedAt,
	}
	return stored, nil
}

// completionTimestamp returns the creation time of the last comment, in
// listing order, that contains the hours marker.
func (m *Mapper) completionTimestamp(ctx context.Context, boardID, cardID string) (*time.Time, error) {
	comments, err := m.remote.ListComments(ctx, boardID, cardID)
	if err != nil {
		if errors.Is(err, integrations.ErrNoContent) {
			return nil, nil
		}
		return nil, err
	}

	var timestamp *time.Time
	for _, comment := range comments {
		if !strings.Contains(comment.Comment, m.hoursMarker) {
			continue
		}
		full, err := m.remote.GetComment(ctx, boardID, cardID, comment.ID)
		if err != nil {
			if errors.Is(err, integrations.ErrNoContent) {
				m.logger.Debug("Comment has no content", zap.String("cardID", cardID), zap.String("commentID", comment.ID))
				break
			}
			return nil, err
		}
		createdAt := full.CreatedAt
		timestamp = &createdAt
	}
	return timestamp, nil
}

// Hours converts Wekan's spent time. Missing values and the "no time
// tracked" sentinel (max int64 or anything beyond) become 0.
func Hours(spent *json.Number) int64 {
	if spent == nil {
		return 0
	}
	n, err := strconv.ParseInt(spent.String(), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(spent.String(), 64)
		if ferr != nil || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0
		}
		return int64(f)
	}
	if n >= math.MaxInt64 {
		return 0
	}
	return n
}

func completed(fieldID string, values []models.WekanCustomFieldValue) bool {
	if fieldID == "" {
		return false
	}
	for _, v := range values {
		if v.ID == fieldID {
			return truthy(v.Value)
		}
	}
	return false
}

// truthy reports whether a decoded JSON value is non-empty and non-zero.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case json.Number:
		f, err := val.Float64()
		return err == nil && f != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
