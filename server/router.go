package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/boolpred"
	"github.com/dekarrin/boolpred/internal/resolver"
	"github.com/dekarrin/boolpred/server/dao"
)

// subRouter keeps a live, query-ready OptimizedPredicateSet in sync with
// the subscription table in db: every mutation to the subscription set
// triggers a rebuild of the compiled decision tree, matching the
// teacher's own pattern of a single in-process collaborator fronting
// the persistence layer rather than recompiling per request.
type subRouter struct {
	mu           sync.RWMutex
	db           dao.Store
	cfg          boolpred.SetConfig
	snapshotPath string
	set          *boolpred.OptimizedPredicateSet
	members      []uuid.UUID // member index -> subscription ID, parallel to set's Add order
	built        time.Time
}

func newSubRouter(db dao.Store, cfg boolpred.SetConfig, snapshotPath string) *subRouter {
	return &subRouter{
		db:           db,
		cfg:          cfg,
		snapshotPath: snapshotPath,
		set:          boolpred.NewOptimizedPredicateSet(nil, cfg),
	}
}

// rebuild reloads every subscription from the store and recompiles the
// decision tree. Called after any subscription create/delete.
func (r *subRouter) rebuild(ctx context.Context) error {
	subs, err := r.db.Subscriptions().GetAll(ctx)
	if err != nil {
		return fmt.Errorf("loading subscriptions: %w", err)
	}

	preds := make([]*boolpred.Predicate, 0, len(subs))
	members := make([]uuid.UUID, 0, len(subs))
	for _, sub := range subs {
		p := boolpred.New(sub.Source)
		if !p.IsValid() {
			// a subscription's source was validated before it was ever
			// stored, so an invalid predicate here means corrupted or
			// hand-edited storage; skip it rather than failing the
			// whole rebuild.
			continue
		}
		preds = append(preds, p)
		members = append(members, sub.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	firstBuild := r.built.IsZero()

	r.set = boolpred.NewOptimizedPredicateSet(preds, r.cfg)
	if firstBuild {
		// only worth consulting a persisted hint for the very first
		// compile after process start; any later rebuild means the
		// population already changed since the snapshot was taken.
		if hint, ok, err := loadSnapshotHint(r.snapshotPath); err == nil && ok {
			r.set.CompileWithHint(hint)
		} else {
			r.set.CompileAST()
		}
	} else {
		r.set.CompileAST()
	}
	r.members = members
	r.built = time.Now()

	// best-effort: a failed snapshot write just costs the next restart a
	// full re-mine, it doesn't affect the tree already compiled above.
	_ = saveSnapshotHint(r.snapshotPath, r.set.Hint())

	return nil
}

// lastCompiled reports when the decision tree was last rebuilt.
func (r *subRouter) lastCompiled() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.built
}

// match evaluates fields against the live decision tree and returns the
// subscription IDs that matched.
func (r *subRouter) match(fields map[string]any) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.set.Evaluate(resolver.MapDocument(fields))

	matched := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && id < len(r.members) {
			matched = append(matched, r.members[id])
		}
	}
	return matched
}

// description renders the currently compiled decision tree, for the
// /status endpoint's diagnostic output.
func (r *subRouter) description() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.Description()
}

func (r *subRouter) memberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
