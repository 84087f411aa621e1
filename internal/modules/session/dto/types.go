package dto

import "time"

type OpenInput struct {
	BookID int64
}

type SessionOutput struct {
	LocalID     string
	SessionID   string
	BookID      int64
	BookTitle   string
	CurrentPage int
	TotalPages  int
	TotalSource string
	Status      string
	OpenedAt    time.Time
	Offline     bool
	// Dirty is set while the local page differs from the stored record.
	Dirty bool
	// Resumed is set when Open returned an already active local session.
	Resumed bool
	// Changed reports whether the last navigation moved the page.
	Changed bool
}

type FlushOutput struct {
	Persisted bool
	Page      int
	Status    string
	// Warning carries a swallowed persistence failure.
	Warning string
}

type CloseOutput struct {
	SessionID   string
	BookID      int64
	EndPage     int
	Status      string
	Persisted   bool
	Warning     string
	JournalPath string
	DurationMin int
}
