package predset

import (
	"fmt"
	"strconv"
	"strings"
)

// Description renders the compiled decision tree: each branch node shows
// its test expression's own §6 description, indented per depth, with
// "true"/"false" child labels; each leaf lists the IDs of its residual
// predicates.
func (s *Optimized) Description() string {
	s.ensureBuilt()
	var sb strings.Builder
	describeNode(&sb, s.tree, 0)
	return sb.String()
}

func describeNode(sb *strings.Builder, n *treeNode, depth int) {
	pad := strings.Repeat("    ", depth)
	if isLeaf(n) {
		ids := make([]string, len(n.residual))
		for i, m := range n.residual {
			ids[i] = strconv.Itoa(m.ID)
		}
		fmt.Fprintf(sb, "%sLeaf: predicates [%s]\n", pad, strings.Join(ids, ", "))
		return
	}

	fmt.Fprintf(sb, "%sBranch on:\n%s\n", pad, n.branch.Describe(depth+1))
	fmt.Fprintf(sb, "%strue ->\n", pad)
	describeNode(sb, n.trueChild, depth+1)
	fmt.Fprintf(sb, "%sfalse ->\n", pad)
	describeNode(sb, n.falseChild, depth+1)
}
