package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *WekanClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWekanClient(srv.URL+"/", 5*time.Second, zap.NewNop())
}

func TestLogin_StoresToken(t *testing.T) {
	var auth string
	wc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "svc", body["username"])
			assert.Equal(t, "pw", body["password"])
			_, _ = w.Write([]byte(`{"id":"u1","token":"tok","tokenExpires":"2030-01-01T00:00:00.000Z"}`))
		case "/api/users":
			auth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`[{"_id":"u1","username":"svc"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	token, err := wc.Login(context.Background(), "svc", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", token.Token)
	assert.Equal(t, 2030, token.TokenExpires.Year())

	users, err := wc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "svc", users[0].Username)
	assert.Equal(t, "Bearer tok", auth)
}

func TestLogin_Rejected(t *testing.T) {
	wc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"error","reason":"User not found"}`))
	})

	_, err := wc.Login(context.Background(), "svc", "bad")
	require.Error(t, err)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "User not found", authErr.Reason)
	assert.Equal(t, "/users/login", authErr.Route)
}

func TestGet_RouteFailure(t *testing.T) {
	wc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := wc.ListLists(context.Background(), "b1")
	require.Error(t, err)

	var routeErr *RouteError
	require.True(t, errors.As(err, &routeErr))
	assert.Equal(t, "/api/boards/b1/lists", routeErr.Route)
	assert.Equal(t, http.StatusInternalServerError, routeErr.Status)
	assert.False(t, errors.Is(err, ErrNoContent))
}

func TestGet_EmptyBody(t *testing.T) {
	wc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := wc.GetCard(context.Background(), "b1", "l1", "c1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoContent))

	comments, err := wc.ListComments(context.Background(), "b1", "c1")
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestGetCard_Decodes(t *testing.T) {
	wc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/boards/b1/lists/l1/cards/c1", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"_id": "c1",
			"title": "Fix login",
			"boardId": "b1",
			"listId": "l1",
			"assignees": ["u1", "u2"],
			"createdAt": "2024-03-01T09:00:00.000Z",
			"dateLastActivity": "2024-03-02T10:11:12.345Z",
			"dueAt": "2024-03-05T00:00:00.000Z",
			"spentTime": 9223372036854775807,
			"customFields": [{"_id": "cf1", "value": true}]
		}`))
	})

	card, err := wc.GetCard(context.Background(), "b1", "l1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Fix login", card.Title)
	assert.Equal(t, []string{"u1", "u2"}, card.Assignees)
	assert.Equal(t, 12, card.DateLastActivity.Second())
	require.NotNil(t, card.DueAt)
	assert.Nil(t, card.StartAt)
	require.NotNil(t, card.SpentTime)
	assert.Equal(t, "9223372036854775807", card.SpentTime.String())
	require.Len(t, card.CustomFields, 1)
	assert.Equal(t, true, card.CustomFields[0].Value)
}

func TestGetUser_Decodes(t *testing.T) {
	wc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/u1", r.URL.Path)
		_, _ = w.Write([]byte(`{"_id":"u1","username":"jdoe","profile":{"fullname":"John Doe"},"emails":[{"address":"jdoe@example.com","verified":true}]}`))
	})

	user, err := wc.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, user.Emails, 1)
	assert.Equal(t, "jdoe@example.com", user.Emails[0].Address)
	assert.Equal(t, "John Doe", user.Profile.Fullname)
}
