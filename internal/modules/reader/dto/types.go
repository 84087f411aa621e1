package dto

type LoadInput struct {
	BookID int64
	// Reload bypasses the local document cache.
	Reload bool
}

type DocumentOutput struct {
	BookID     int64
	Title      string
	Authors    []string
	Mode       string
	TotalPages int
	Size       int
	Cached     bool
	Simulated  bool
}

type PageInput struct {
	BookID int64
	Page   int
}

type PageOutput struct {
	BookID     int64
	Number     int
	TotalPages int
	Text       string
	Simulated  bool
}

type ExternalOutput struct {
	BookID   int64
	Path     string
	Launched bool
}
