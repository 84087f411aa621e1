package dto

type LookupInput struct {
	UserID int64
	BookID int64
}

type CreateInput struct {
	BookID int64
	Page   int
	Status string
}

type UpdateInput struct {
	ID     string
	Page   int
	Status string
}

type RecordOutput struct {
	ID             string
	UserID         int64
	BookID         int64
	Page           int
	Status         string
	BookTitle      string
	BookTotalPages int
	Percent        float64
	DocumentURL    string
	CoverURL       string
}

type StatsOutput struct {
	Completed  int
	InProgress int
	PagesRead  int
}
