package dataset

import "fmt"

// Skip reason labels, also used as metric labels.
const (
	ReasonMalformed  = "malformed"
	ReasonValidation = "validation"
	ReasonDuplicate  = "duplicate"
)

// SkippedRecord describes one input record dropped during loading.
type SkippedRecord struct {
	Line   int
	ID     string
	Reason string
	Err    error
}

func (s SkippedRecord) String() string {
	id := s.ID
	if id == "" {
		id = "?"
	}
	return fmt.Sprintf("line %d (id %s): %s: %v", s.Line, id, s.Reason, s.Err)
}

// SkipReport collects the records a loader dropped, so a run can report
// exactly which inputs were excluded instead of failing the whole batch.
type SkipReport struct {
	Records []SkippedRecord
}

// Add appends one skipped record.
func (r *SkipReport) Add(line int, id, reason string, err error) {
	r.Records = append(r.Records, SkippedRecord{Line: line, ID: id, Reason: reason, Err: err})
}

// Len returns the number of skipped records.
func (r *SkipReport) Len() int {
	return len(r.Records)
}

// Empty reports whether nothing was skipped.
func (r *SkipReport) Empty() bool {
	return len(r.Records) == 0
}
