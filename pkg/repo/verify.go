package repo

import (
	"fmt"

	"github.com/odvcencio/twig/pkg/index"
	"github.com/odvcencio/twig/pkg/object"
)

// VerifyReport combines an object store scan with an index/store
// consistency check.
type VerifyReport struct {
	*object.VerifyReport
	IndexEntries int
	// Missing lists index entries whose blob is absent from the store.
	Missing []index.Entry
}

// OK reports whether no corrupt objects or missing blobs were found.
func (v *VerifyReport) OK() bool {
	return len(v.Corrupt) == 0 && len(v.Missing) == 0
}

// Verify re-hashes every stored object and checks that every staged blob is
// present.
func (r *Repo) Verify() (*VerifyReport, error) {
	storeReport, err := r.Store.Verify()
	if err != nil {
		return nil, err
	}
	entries, err := r.Index.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	report := &VerifyReport{VerifyReport: storeReport, IndexEntries: len(entries)}
	for _, e := range entries {
		if !r.Store.Has(e.Hash) {
			report.Missing = append(report.Missing, e)
		}
	}
	return report, nil
}
