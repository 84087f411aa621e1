package domain

import "fmt"

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusAbandoned:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown reading status %q", raw)
}

// Record is the backend's durable reading record for one (user, book) pair.
type Record struct {
	ID             string
	UserID         int64
	BookID         int64
	Page           int
	Status         Status
	BookTitle      string
	BookTotalPages int
	Percent        float64
	DocumentURL    string
	CoverURL       string
}

type Stats struct {
	Completed  int
	InProgress int
	PagesRead  int
}
