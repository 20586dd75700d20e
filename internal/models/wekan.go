package models

import (
	"encoding/json"
	"time"
)

// Wire types for the Wekan REST API. Field names follow the API's
// camelCase convention; object ids arrive as "_id".

type WekanToken struct {
	ID           string    `json:"id"`
	Token        string    `json:"token"`
	TokenExpires time.Time `json:"tokenExpires"`
}

type WekanAPIError struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

type WekanBoard struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

type WekanList struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

type WekanCustomField struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// WekanCardSummary is the short card form returned by list routes.
// DateLastActivity is only present on some server versions.
type WekanCardSummary struct {
	ID               string     `json:"_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Assignees        []string   `json:"assignees"`
	DateLastActivity *time.Time `json:"dateLastActivity,omitempty"`
	ReceivedAt       *time.Time `json:"receivedAt"`
	StartAt          *time.Time `json:"startAt"`
	EndAt            *time.Time `json:"endAt"`
	DueAt            *time.Time `json:"dueAt"`
}

type WekanCustomFieldValue struct {
	ID    string `json:"_id"`
	Value any    `json:"value"`
}

type WekanCard struct {
	ID               string                  `json:"_id"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	BoardID          string                  `json:"boardId"`
	ListID           string                  `json:"listId"`
	Assignees        []string                `json:"assignees"`
	CreatedAt        time.Time               `json:"createdAt"`
	DateLastActivity time.Time               `json:"dateLastActivity"`
	ReceivedAt       *time.Time              `json:"receivedAt"`
	StartAt          *time.Time              `json:"startAt"`
	EndAt            *time.Time              `json:"endAt"`
	DueAt            *time.Time              `json:"dueAt"`
	SpentTime        *json.Number            `json:"spentTime"`
	CustomFields     []WekanCustomFieldValue `json:"customFields"`
}

type WekanCommentSummary struct {
	ID       string `json:"_id"`
	AuthorID string `json:"authorId"`
	Comment  string `json:"comment"`
}

type WekanComment struct {
	ID        string    `json:"_id"`
	BoardID   string    `json:"boardId"`
	CardID    string    `json:"cardId"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId"`
}

type WekanUserSummary struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type WekanEmail struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
}

type WekanProfile struct {
	Fullname string `json:"fullname"`
}

type WekanUser struct {
	ID        string        `json:"_id"`
	Username  string        `json:"username"`
	CreatedAt *time.Time    `json:"createdAt"`
	Profile   *WekanProfile `json:"profile"`
	Emails    []WekanEmail  `json:"emails"`
}
