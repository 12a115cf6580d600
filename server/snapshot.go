package server

import (
	"fmt"
	"os"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/boolpred"
)

// loadSnapshotHint reads a previously-saved boolpred.BuildHint from
// path, the way the teacher's sqlite DAO reads a REZI-encoded game
// state back off disk. A missing file is not an error: it just means
// the next compile mines subexpressions from scratch, same as a first
// run ever would.
func loadSnapshotHint(path string) (boolpred.BuildHint, bool, error) {
	if path == "" {
		return boolpred.BuildHint{}, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return boolpred.BuildHint{}, false, nil
		}
		return boolpred.BuildHint{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	var hint boolpred.BuildHint
	n, err := rezi.DecBinary(data, &hint)
	if err != nil {
		return boolpred.BuildHint{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	if n != len(data) {
		return boolpred.BuildHint{}, false, fmt.Errorf("decode snapshot: consumed %d/%d bytes", n, len(data))
	}

	return hint, true, nil
}

// saveSnapshotHint writes hint to path in REZI binary form, so the next
// server start can warm-start its decision tree compile. A no-op if
// path is unset.
func saveSnapshotHint(path string, hint boolpred.BuildHint) error {
	if path == "" {
		return nil
	}

	data := rezi.EncBinary(hint)
	if err := os.WriteFile(path, data, 0660); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
