package importer

import (
	"errors"
	"fmt"

	assets "github.com/goliatone/go-assets"
)

// Report summarises one Scan.
type Report struct {
	Restored []assets.ID
	Imported []assets.ID
	// Skipped lists source paths that were already known.
	Skipped []string
	Failed  []Failure
}

// Failure is a single asset or file that could not be processed.
type Failure struct {
	ID   assets.ID
	Path string
	Err  error
}

func (f Failure) Error() string {
	switch {
	case f.Path != "" && !f.ID.IsNil():
		return fmt.Sprintf("%s (%s): %v", f.Path, f.ID, f.Err)
	case f.Path != "":
		return fmt.Sprintf("%s: %v", f.Path, f.Err)
	default:
		return fmt.Sprintf("%s: %v", f.ID, f.Err)
	}
}

func (f Failure) Unwrap() error { return f.Err }

func (r *Report) fail(id assets.ID, path string, err error) {
	r.Failed = append(r.Failed, Failure{ID: id, Path: path, Err: err})
}

// Err joins every failure, or returns nil when the scan was clean.
func (r *Report) Err() error {
	if r == nil || len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for n, failure := range r.Failed {
		errs[n] = failure
	}
	return errors.Join(errs...)
}
