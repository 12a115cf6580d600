package predset

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/dekarrin/boolpred/internal/ast"
)

// BuildHint is a snapshot of the branch-selection decisions made by one
// decision-tree compile: the population it was built from (identified
// by PopulationHash) and the branch fingerprints chosen at each
// internal node, flattened in pre-order (a node's own fingerprint, then
// its true child's, then its false child's). Persisting this lets a
// later compile of the *same* population skip the §4.5 step 1-2 mining
// scan and go straight to partitioning.
type BuildHint struct {
	PopulationHash string
	Fingerprints   []string
}

// populationHash identifies a member population by the sorted set of
// its root fingerprints, so a hint built from one population is never
// silently applied to a different one.
func populationHash(members []Member) string {
	fps := make([]string, len(members))
	for i, m := range members {
		fps[i] = m.Root.Fingerprint()
	}
	sort.Strings(fps)

	h := sha256.New()
	for _, fp := range fps {
		h.Write([]byte(fp))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Hint captures the branch order of the currently compiled tree, for
// persistence via a caller-chosen binary format. Must be called before
// Finalize, since Finalize drops the member population the hash is
// computed from.
func (s *Optimized) Hint() BuildHint {
	s.ensureBuilt()
	var fps []string
	var walk func(n *treeNode)
	walk = func(n *treeNode) {
		if isLeaf(n) {
			return
		}
		fps = append(fps, n.fingerprint)
		walk(n.trueChild)
		walk(n.falseChild)
	}
	walk(s.tree)
	return BuildHint{PopulationHash: populationHash(s.members), Fingerprints: fps}
}

// CompileWithHint rebuilds the decision tree using hint's recorded
// branch order when hint.PopulationHash matches the current member
// population, skipping the mining scan at every node where the hint
// still applies. It transparently falls back to a full CompileAST
// (mining from scratch) for any node where the hint's fingerprint is
// stale, absent, or the population has changed outright.
func (s *Optimized) CompileWithHint(hint BuildHint) {
	if hint.PopulationHash == "" || hint.PopulationHash != populationHash(s.members) || len(hint.Fingerprints) == 0 {
		s.CompileAST()
		return
	}

	idx := 0
	useHint := true
	s.tree = buildHinted(s.members, s.config, 0, hint.Fingerprints, &idx, &useHint)
	s.built = true
}

// tryFingerprint re-derives the candidate statistics for one specific
// fingerprint against the live members, without scanning every other
// fingerprint present — the scan pickBranch would otherwise need to do
// to find the best one.
func tryFingerprint(members []Member, cfg Config, fp string) (candidate, bool) {
	count := 0
	var node ast.Node

	for _, m := range members {
		found := false
		ast.Walk(m.Root, func(n ast.Node) {
			if found || !isBranchable(n) {
				return
			}
			if n.Fingerprint() == fp {
				found = true
				if node == nil {
					node = n
				}
			}
		})
		if found {
			count++
		}
	}

	if node == nil || count < cfg.MinCount {
		return candidate{}, false
	}
	if benefitRatio(count) < cfg.MinBenefit {
		return candidate{}, false
	}
	return candidate{fingerprint: fp, node: node, count: count}, true
}

// buildHinted mirrors build, but consults hint (consumed in pre-order
// via idx) for its branch choice before falling back to a fresh
// pickBranch scan. Once a hinted fingerprint fails to apply, useHint is
// latched false for the remainder of the compile: the pre-order index
// is only meaningful while every ancestor's choice matched the hint.
func buildHinted(members []Member, cfg Config, depth int, hint []string, idx *int, useHint *bool) *treeNode {
	if depth >= cfg.MaxDepth || len(members) < 2 {
		return &treeNode{residual: members}
	}

	var cand candidate
	ok := false

	if *useHint && *idx < len(hint) {
		cand, ok = tryFingerprint(members, cfg, hint[*idx])
		if !ok {
			*useHint = false
		}
	}
	if !ok {
		cand, ok = pickBranch(members, cfg)
	}
	if !ok {
		return &treeNode{residual: members}
	}
	if *useHint {
		*idx++
	}

	trueSide, falseSide := partition(members, cand.fingerprint)

	return &treeNode{
		branch:      cand.node,
		fingerprint: cand.fingerprint,
		trueChild:   buildHinted(trueSide, cfg, depth+1, hint, idx, useHint),
		falseChild:  buildHinted(falseSide, cfg, depth+1, hint, idx, useHint),
	}
}
