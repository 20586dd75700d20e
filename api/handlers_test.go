package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chxlky/wekan-sync/database"
	"github.com/chxlky/wekan-sync/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	cards  []models.Card
	report []database.UserHours
	err    error

	lastBoard string
}

func (m *mockStore) FindCardByID(_ context.Context, cardID string) (*models.Card, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.cards {
		if c.CardID == cardID {
			card := c
			return &card, nil
		}
	}
	return nil, nil
}

func (m *mockStore) FindCardsByBoard(_ context.Context, boardID string) ([]models.Card, error) {
	m.lastBoard = boardID
	var out []models.Card
	for _, c := range m.cards {
		if c.BoardID == boardID {
			out = append(out, c)
		}
	}
	return out, m.err
}

func (m *mockStore) FindAllCards(_ context.Context) ([]models.Card, error) {
	return m.cards, m.err
}

func (m *mockStore) HoursByUser(_ context.Context, boardID string) ([]database.UserHours, error) {
	m.lastBoard = boardID
	return m.report, m.err
}

func setupRouter(store CardStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	(&Handler{Store: store}).Register(router)
	return router
}

func doRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func testCards() []models.Card {
	return []models.Card{
		{BoardID: "b1", CardID: "c1", Status: models.StatusNew, Info: models.CardInfo{Title: "one"}},
		{BoardID: "b2", CardID: "c2", Status: models.StatusReview, Info: models.CardInfo{Title: "two"}},
	}
}

func TestHealthCheck(t *testing.T) {
	w := doRequest(setupRouter(&mockStore{}), "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListCards(t *testing.T) {
	store := &mockStore{cards: testCards()}
	router := setupRouter(store)

	w := doRequest(router, "/api/cards")
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Card
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = doRequest(router, "/api/cards?board=b2")
	require.Equal(t, http.StatusOK, w.Code)
	var board []models.Card
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board, 1)
	assert.Equal(t, "two", board[0].Info.Title)
	assert.Equal(t, "b2", store.lastBoard)

	w = doRequest(router, "/api/cards?board=none")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestGetCard(t *testing.T) {
	router := setupRouter(&mockStore{cards: testCards()})

	w := doRequest(router, "/api/cards/c1")
	require.Equal(t, http.StatusOK, w.Code)
	var card models.Card
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &card))
	assert.Equal(t, models.StatusNew, card.Status)

	w = doRequest(router, "/api/cards/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHoursReport(t *testing.T) {
	store := &mockStore{report: []database.UserHours{{Slug: "jdoe", Hours: 7200, Cards: 2, Completed: 1}}}
	router := setupRouter(store)

	w := doRequest(router, "/api/reports/hours?board=b1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"slug":"jdoe","name":"","hours":7200,"cards":2,"completed":1}]`, w.Body.String())
	assert.Equal(t, "b1", store.lastBoard)
}

func TestStoreFailure(t *testing.T) {
	router := setupRouter(&mockStore{err: errors.New("db down")})

	for _, path := range []string{"/api/cards", "/api/cards/c1", "/api/reports/hours"} {
		w := doRequest(router, path)
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
	}
}
