package predset

// Config exposes the §4.5 tuning parameters for decision-tree
// construction: the minimum occurrence count for a subexpression to be
// considered for hoisting, the recursion depth cap, and the minimum
// estimated benefit ratio required to keep branching.
type Config struct {
	MinCount   int
	MaxDepth   int
	MinBenefit float64
}

// DefaultConfig returns the tuning values used when a set is built
// without an explicit Config, per §4.5 ("min_count: ≥2, max_depth: small
// positive int, min_benefit: ratio").
func DefaultConfig() Config {
	return Config{
		MinCount:   2,
		MaxDepth:   6,
		MinBenefit: 0.1,
	}
}
