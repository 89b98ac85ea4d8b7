package dto

type StartInput struct {
	Title   string
	TagName string
}

type StopInput struct {
	Rating  float64
	Comment string
}

type TagOutput struct {
	Name           string
	Color          string
	DateCreated    int64
	DateLastUsed   int64
	TotalInstances int
}

type SessionOutput struct {
	ID         string
	Title      string
	DurationMS int64
	Rating     float64
	Comment    string
	Timestamp  int64
	State      string
	Tag        *TagOutput
}
