package reconcile

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chxlky/wekan-sync/database"
	"github.com/chxlky/wekan-sync/integrations"
	"github.com/chxlky/wekan-sync/internal/config"
	"github.com/chxlky/wekan-sync/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRemote serves a single in-memory Wekan instance.
type fakeRemote struct {
	boards         []models.WekanBoard
	lists          map[string][]models.WekanList
	fields         map[string][]models.WekanCustomField
	cards          map[string][]models.WekanCard // keyed by listID
	comments       map[string][]models.WekanCommentSummary
	commentDetails map[string]models.WekanComment
	users          map[string]models.WekanUser

	// summaryActivity copies dateLastActivity into list summaries.
	summaryActivity bool
	noContent       map[string]bool // card or comment ids answering 204
	failures        map[string]error

	getCardCalls    int
	getUserCalls    int
	getCommentCalls int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		lists:          make(map[string][]models.WekanList),
		fields:         make(map[string][]models.WekanCustomField),
		cards:          make(map[string][]models.WekanCard),
		comments:       make(map[string][]models.WekanCommentSummary),
		commentDetails: make(map[string]models.WekanComment),
		users:          make(map[string]models.WekanUser),
		noContent:      make(map[string]bool),
		failures:       make(map[string]error),
	}
}

func noContent(route string) error {
	return &integrations.RouteError{Route: route, Status: http.StatusNoContent}
}

func (f *fakeRemote) ListBoards(_ context.Context, _ string) ([]models.WekanBoard, error) {
	return f.boards, nil
}

func (f *fakeRemote) ListLists(_ context.Context, boardID string) ([]models.WekanList, error) {
	return f.lists[boardID], nil
}

func (f *fakeRemote) ListCustomFields(_ context.Context, boardID string) ([]models.WekanCustomField, error) {
	return f.fields[boardID], nil
}

func (f *fakeRemote) ListCards(_ context.Context, _, listID string) ([]models.WekanCardSummary, error) {
	var out []models.WekanCardSummary
	for _, c := range f.cards[listID] {
		s := models.WekanCardSummary{ID: c.ID, Title: c.Title, Assignees: c.Assignees}
		if f.summaryActivity {
			activity := c.DateLastActivity
			s.DateLastActivity = &activity
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRemote) GetCard(_ context.Context, boardID, listID, cardID string) (*models.WekanCard, error) {
	f.getCardCalls++
	if err := f.failures[cardID]; err != nil {
		return nil, err
	}
	if f.noContent[cardID] {
		return nil, noContent("/api/boards/" + boardID + "/lists/" + listID + "/cards/" + cardID)
	}
	for _, c := range f.cards[listID] {
		if c.ID == cardID {
			card := c
			return &card, nil
		}
	}
	return nil, &integrations.RouteError{Route: cardID, Status: http.StatusNotFound}
}

func (f *fakeRemote) ListComments(_ context.Context, _, cardID string) ([]models.WekanCommentSummary, error) {
	if err := f.failures["comments:"+cardID]; err != nil {
		return nil, err
	}
	if f.noContent["comments:"+cardID] {
		return nil, noContent("comments")
	}
	return f.comments[cardID], nil
}

func (f *fakeRemote) GetComment(_ context.Context, _, _, commentID string) (*models.WekanComment, error) {
	f.getCommentCalls++
	if err := f.failures[commentID]; err != nil {
		return nil, err
	}
	if f.noContent[commentID] {
		return nil, noContent("comment")
	}
	c := f.commentDetails[commentID]
	return &c, nil
}

func (f *fakeRemote) ListUsers(_ context.Context) ([]models.WekanUserSummary, error) {
	var out []models.WekanUserSummary
	for id, u := range f.users {
		out = append(out, models.WekanUserSummary{ID: id, Username: u.Username})
	}
	return out, nil
}

func (f *fakeRemote) GetUser(_ context.Context, userID string) (*models.WekanUser, error) {
	f.getUserCalls++
	u, ok := f.users[userID]
	if !ok {
		return nil, &integrations.RouteError{Route: "/api/users/" + userID, Status: http.StatusNotFound}
	}
	return &u, nil
}

func (f *fakeRemote) addUser(id, email string) {
	u := models.WekanUser{ID: id, Username: id}
	if email != "" {
		u.Emails = []models.WekanEmail{{Address: email, Verified: true}}
	}
	f.users[id] = u
}

func setupStore(t *testing.T, maxRecordBytes int) (*database.Store, *gorm.DB) {
	t.Helper()

	db, err := database.Init(config.Database{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "cards.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	return database.NewStore(db, maxRecordBytes), db
}

func seedUser(t *testing.T, db *gorm.DB, slug string) models.User {
	t.Helper()
	u := models.User{Slug: slug, Name: strings.ToUpper(slug), Email: slug + "@example.com"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		panic(err)
	}
	return t
}

func syncConfig() config.Sync {
	return config.Sync{
		CompletedField: "Выполнено",
		HoursMarker:    "Часы успешно отправлены в кабинет.",
		Baseline:       config.BaselineBoard,
	}
}
