package hierarchy

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
)

// TreeNode is one flag in the materialised forest. Children is never nil;
// it is empty for leaves and wherever a cycle or the depth bound cut the branch.
type TreeNode struct {
	Flag      domain.Flag
	Effective bool
	Children  []TreeNode
}

// BuildTree returns the forest rooted at every parent-less record, ordered by
// name at each level. It always terminates: the current path is carried as a
// visited set and depth is capped at MaxDepth independently of cycle checks.
// Records unreachable from any root are omitted here and reported by Audit.
func (r *Resolver) BuildTree(ctx context.Context, snap *Snapshot) []TreeNode {
	children := childIndex(snap)

	b := &treeBuilder{
		ctx:      ctx,
		children: children,
		maxDepth: r.maxDepth(),
	}

	roots := children[""]
	forest := make([]TreeNode, 0, len(roots))
	for _, root := range roots {
		forest = append(forest, b.build(root, true, 0, map[string]struct{}{}))
	}

	if unreached := snap.Len() - b.emitted; unreached > 0 {
		reportAnomaly(ctx, Anomaly{
			Kind:   AnomalyUnreachable,
			Flag:   "*",
			Detail: fmt.Sprintf("%d record(s) not reachable from any root", unreached),
		})
	}
	return forest
}

type treeBuilder struct {
	ctx      context.Context
	children map[string][]domain.Flag
	maxDepth int
	emitted  int
}

func (b *treeBuilder) build(f domain.Flag, parentEffective bool, ancestors int, path map[string]struct{}) TreeNode {
	node := TreeNode{
		Flag:      f,
		Effective: parentEffective && f.Enabled,
		Children:  []TreeNode{},
	}

	if _, onPath := path[f.ID]; onPath {
		node.Effective = false
		reportAnomaly(b.ctx, Anomaly{Kind: AnomalyCycle, Flag: f.Name, Detail: "record repeats on its own path; branch cut"})
		return node
	}
	b.emitted++

	kids := b.children[f.ID]
	if len(kids) == 0 {
		return node
	}
	if ancestors+1 > b.maxDepth {
		reportAnomaly(b.ctx, Anomaly{
			Kind:   AnomalyDepthExceeded,
			Flag:   f.Name,
			Detail: fmt.Sprintf("children beyond max depth %d cut", b.maxDepth),
		})
		return node
	}

	path[f.ID] = struct{}{}
	defer delete(path, f.ID)

	node.Children = make([]TreeNode, 0, len(kids))
	for _, child := range kids {
		node.Children = append(node.Children, b.build(child, node.Effective, ancestors+1, path))
	}
	return node
}

// childIndex maps parent id to direct children ordered by name. Roots are
// stored under the empty key. Built once per call in O(n).
func childIndex(snap *Snapshot) map[string][]domain.Flag {
	idx := make(map[string][]domain.Flag, snap.Len())
	for _, f := range snap.Flags() {
		idx[f.ParentIDValue()] = append(idx[f.ParentIDValue()], f)
	}
	return idx
}
