package domain

// RowFailure is a data row the importer could not persist.
type RowFailure struct {
	Row    int
	Reason string
}

// DuplicateRow is an incoming row whose timestamp already exists in the
// store. Existing data always wins; the row is discarded, not an error.
type DuplicateRow struct {
	Row       int
	Timestamp int64
	Title     string
}

// ImportOutcome is the transient per-call report an import produces. It is
// never persisted; callers render success/warning/error tone from its shape.
type ImportOutcome struct {
	RowsSeen    int
	Succeeded   int
	Failed      []RowFailure
	Duplicates  []DuplicateRow
	CreatedTags []string
	Warnings    []string
}
