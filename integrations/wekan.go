package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chxlky/wekan-sync/internal/models"
	"go.uber.org/zap"
)

type WekanClient struct {
	Client  *http.Client
	BaseURL string
	token   string
	logger  *zap.Logger
}

func NewWekanClient(baseURL string, timeout time.Duration, logger *zap.Logger) *WekanClient {
	if logger == nil {
		logger = zap.L()
	}
	return &WekanClient{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Login exchanges credentials for a bearer token which is then used for
// every following request. The token is not renewed.
func (wc *WekanClient) Login(ctx context.Context, username, password string) (*models.WekanToken, error) {
	const route = "/users/login"

	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.BaseURL+route, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	wc.logger.Info("Get token", zap.String("baseURL", wc.BaseURL))

	resp, err := wc.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send login request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr models.WekanAPIError
		reason := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
			reason = apiErr.Reason
		}
		return nil, &AuthError{Route: route, Status: resp.StatusCode, Reason: reason}
	}

	var token models.WekanToken
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	wc.token = token.Token

	return &token, nil
}

// get issues an authenticated GET and decodes the JSON body into out.
func (wc *WekanClient) get(ctx context.Context, route string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wc.BaseURL+route, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", route, err)
	}
	req.Header.Set("Authorization", "Bearer "+wc.token)
	req.Header.Set("Content-Type", "application/json")

	wc.logger.Debug("Wekan request", zap.String("route", route))

	resp, err := wc.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request for %s: %w", route, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RouteError{Route: route, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response for %s: %w", route, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &RouteError{Route: route, Status: http.StatusNoContent}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", route, err)
	}
	return nil
}

// getList is get for collection routes, where no content means no items.
func getList[T any](ctx context.Context, wc *WekanClient, route string) ([]T, error) {
	var items []T
	if err := wc.get(ctx, route, &items); err != nil {
		if errors.Is(err, ErrNoContent) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

func (wc *WekanClient) ListBoards(ctx context.Context, userID string) ([]models.WekanBoard, error) {
	return getList[models.WekanBoard](ctx, wc, fmt.Sprintf("/api/users/%s/boards", userID))
}

func (wc *WekanClient) ListLists(ctx context.Context, boardID string) ([]models.WekanList, error) {
	return getList[models.WekanList](ctx, wc, fmt.Sprintf("/api/boards/%s/lists", boardID))
}

func (wc *WekanClient) ListCustomFields(ctx context.Context, boardID string) ([]models.WekanCustomField, error) {
	return getList[models.WekanCustomField](ctx, wc, fmt.Sprintf("/api/boards/%s/custom-fields", boardID))
}

func (wc *WekanClient) ListCards(ctx context.Context, boardID, listID string) ([]models.WekanCardSummary, error) {
	return getList[models.WekanCardSummary](ctx, wc, fmt.Sprintf("/api/boards/%s/lists/%s/cards", boardID, listID))
}

func (wc *WekanClient) GetCard(ctx context.Context, boardID, listID, cardID string) (*models.WekanCard, error) {
	var card models.WekanCard
	if err := wc.get(ctx, fmt.Sprintf("/api/boards/%s/lists/%s/cards/%s", boardID, listID, cardID), &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (wc *WekanClient) ListComments(ctx context.Context, boardID, cardID string) ([]models.WekanCommentSummary, error) {
	return getList[models.WekanCommentSummary](ctx, wc, fmt.Sprintf("/api/boards/%s/cards/%s/comments", boardID, cardID))
}

func (wc *WekanClient) GetComment(ctx context.Context, boardID, cardID, commentID string) (*models.WekanComment, error) {
	var comment models.WekanComment
	if err := wc.get(ctx, fmt.Sprintf("/api/boards/%s/cards/%s/comments/%s", boardID, cardID, commentID), &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (wc *WekanClient) ListUsers(ctx context.Context) ([]models.WekanUserSummary, error) {
	return getList[models.WekanUserSummary](ctx, wc, "/api/users")
}

func (wc *WekanClient) GetUser(ctx context.Context, userID string) (*models.WekanUser, error) {
	var user models.WekanUser
	if err := wc.get(ctx, fmt.Sprintf("/api/users/%s", userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}
