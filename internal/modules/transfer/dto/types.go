package dto

type RowFailure struct {
	Row    int
	Reason string
}

type DuplicateRow struct {
	Row       int
	Timestamp int64
	Title     string
}

type ImportOutcome struct {
	RowsSeen    int
	Succeeded   int
	Failed      []RowFailure
	Duplicates  []DuplicateRow
	CreatedTags []string
	Warnings    []string
}

type ValidationOutput struct {
	Valid        bool
	Errors       []RowFailure
	Warnings     []string
	SessionCount int
}

type ExportOutput struct {
	Content     string
	Exported    int
	SkippedLive int
}
