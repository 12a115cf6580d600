package optimize

import (
	"github.com/dekarrin/boolpred/internal/ast"
	"github.com/dekarrin/boolpred/internal/value"
)

// Substitute replaces every subtree of root whose fingerprint equals
// target with a ConstantNode carrying val, per §4.5 step 3's
// "substituting the constant in place of b". The result is not
// re-optimized; callers pass it back through Optimize to fold the
// substitution's consequences.
func Substitute(root ast.Node, target string, val value.Value) ast.Node {
	if root.Fingerprint() == target {
		return &ast.ConstantNode{Value: val, Pos: root.Position()}
	}
	return rewriteChildren(root, func(c ast.Node) ast.Node {
		return Substitute(c, target, val)
	})
}
