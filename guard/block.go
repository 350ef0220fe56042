package guard

import "math/bits"

// MaxInstructionCount is the exclusive upper limit on a function's
// worst-case instruction count.
const MaxInstructionCount = 0xFFFF

// noParent marks the root of a block tree.
const noParent = -1

// block is one lexical block of a function body.
type block struct {
	parent int    // arena index of the enclosing block, noParent for the root
	bound  uint64 // iterations this block may run, relative to the whole call
	count  uint64 // instructions directly inside this block
}

// blockTree is an arena of blocks for a single function body. Nodes are
// appended in opening order, so every node's index is greater than its
// parent's and a reverse walk visits children before parents.
type blockTree struct {
	nodes   []block
	current int
	depth   int
}

func newBlockTree() *blockTree {
	return &blockTree{
		nodes: []block{{parent: noParent, bound: 1}},
	}
}

// bound returns the iteration bound of the open block.
func (t *blockTree) bound() uint64 {
	return t.nodes[t.current].bound
}

// count records one instruction in the open block.
func (t *blockTree) count() {
	t.nodes[t.current].count++
}

// open pushes a child of the open block and makes it current.
func (t *blockTree) open(bound uint64) {
	t.nodes = append(t.nodes, block{parent: t.current, bound: bound})
	t.current = len(t.nodes) - 1
	t.depth++
}

// close pops the open block. It reports true when the root itself was
// closed, which is only legal for the final end of a body.
func (t *blockTree) close() (rootClosed bool) {
	if t.current == noParent {
		return true
	}
	t.current = t.nodes[t.current].parent
	t.depth--
	return t.current == noParent
}

// closed reports whether the root block has been closed.
func (t *blockTree) closed() bool {
	return t.current == noParent
}

// worstCase returns the root's cost: each block costs its own instructions
// plus every child's cost scaled by max(1, child.bound/parent.bound).
// Arithmetic saturates so a hostile nesting cannot wrap the total.
func (t *blockTree) worstCase() uint64 {
	cost := make([]uint64, len(t.nodes))
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := t.nodes[i]
		cost[i] = addSat(cost[i], n.count)
		if n.parent == noParent {
			continue
		}
		mult := uint64(1)
		if pb := t.nodes[n.parent].bound; pb > 0 && n.bound/pb > 1 {
			mult = n.bound / pb
		}
		cost[n.parent] = addSat(cost[n.parent], mulSat(cost[i], mult))
	}
	return cost[0]
}

func addSat(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return ^uint64(0)
	}
	return sum
}

func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return ^uint64(0)
	}
	return lo
}
