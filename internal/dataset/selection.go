package dataset

import (
	"errors"
	"fmt"
)

// ErrAmbiguousSelection is returned by FailIfAmbiguous when a study
// offers more than one candidate data file.
var ErrAmbiguousSelection = errors.New("multiple candidate data files")

// FileRef is one candidate data file within a study.
type FileRef struct {
	SiteName string
	URL      string
}

// SelectionStrategy picks one file among several candidates in the
// single-file ingestion path. It replaces the interactive prompt the
// archive tooling historically used, so the core never blocks on
// console input.
type SelectionStrategy interface {
	Select(candidates []FileRef) (int, error)
}

// PickFirst always selects the first candidate.
type PickFirst struct{}

func (PickFirst) Select(candidates []FileRef) (int, error) {
	if len(candidates) == 0 {
		return 0, errors.New("no candidate data files")
	}
	return 0, nil
}

// PickIndex selects the candidate at a fixed index.
type PickIndex int

func (p PickIndex) Select(candidates []FileRef) (int, error) {
	i := int(p)
	if i < 0 || i >= len(candidates) {
		return 0, fmt.Errorf("selection index %d out of range [0-%d]", i, len(candidates)-1)
	}
	return i, nil
}

// FailIfAmbiguous selects a sole candidate and errors when there is more
// than one.
type FailIfAmbiguous struct{}

func (FailIfAmbiguous) Select(candidates []FileRef) (int, error) {
	switch len(candidates) {
	case 0:
		return 0, errors.New("no candidate data files")
	case 1:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: found %d", ErrAmbiguousSelection, len(candidates))
	}
}
