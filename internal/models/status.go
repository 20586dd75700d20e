package models

type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReview     Status = "REVIEW"
	StatusCompleted  Status = "COMPLETED"
	StatusArchive    Status = "ARCHIVE"
	StatusUnknown    Status = "UNKNOWN"
)

var listTitleStatus = map[string]Status{
	"новые":           StatusNew,
	"в работе":        StatusInProgress,
	"можно проверять": StatusReview,
	"выполнено":       StatusCompleted,
	"архив":           StatusArchive,
}

// StatusFromListTitle maps a board list title to a card status. Titles
// must match exactly; anything else is StatusUnknown.
func StatusFromListTitle(title string) Status {
	if s, ok := listTitleStatus[title]; ok {
		return s
	}
	return StatusUnknown
}
