package download

import "github.com/handiism/bandcamper/internal/metadata"

// ReleaseReport is the result of one release.
type ReleaseReport struct {
	URL      string
	Artist   string
	Title    string
	Strategy Strategy

	// Files are the final paths of the placed files.
	Files []string

	// Skipped are per-format and per-track failures.
	Skipped []error

	Tags metadata.Tally

	// Err is set when the release failed as a whole.
	Err error
}

// OK reports whether the release produced files without failing.
func (r ReleaseReport) OK() bool {
	return r.Err == nil && len(r.Files) > 0
}

// IdentifierReport is the result of one user-supplied identifier.
type IdentifierReport struct {
	Identifier string

	// Err is set when the identifier could not be resolved.
	Err error

	Releases []ReleaseReport
}

// Report summarizes a batch.
type Report struct {
	Identifiers []IdentifierReport

	Succeeded   int
	Failed      int
	FilesPlaced int
	TagsWritten int
	TagsFailed  int

	// Interrupted is set when the batch stopped because its context ended.
	Interrupted bool
}

func (r *Report) add(rr ReleaseReport) {
	if rr.OK() {
		r.Succeeded++
	} else {
		r.Failed++
	}
	r.FilesPlaced += len(rr.Files)
	r.TagsWritten += rr.Tags.Written
	r.TagsFailed += rr.Tags.Failed
}

// Releases returns every release report in processing order.
func (r *Report) Releases() []ReleaseReport {
	var out []ReleaseReport
	for _, ir := range r.Identifiers {
		out = append(out, ir.Releases...)
	}
	return out
}
