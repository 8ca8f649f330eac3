package reconcile

// UnionFind tracks connected components over integer ids using a parent
// slice with path compression. Union always attaches the larger root
// beneath the smaller, so every component's root is its smallest member
// and the resulting partition does not depend on the order unions were
// applied in.
type UnionFind struct {
	parent []int
}

// NewUnionFind creates n singleton components with ids 0 through n-1.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &UnionFind{parent: parent}
}

// Find returns the root of x's component, compressing the path walked.
func (u *UnionFind) Find(x int) int {
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		u.parent[x], x = root, u.parent[x]
	}
	return root
}

// Union merges the components containing a and b.
func (u *UnionFind) Union(a, b int) {
	ra, rb := u.Find(a), u.Find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}

// Same reports whether a and b are in one component.
func (u *UnionFind) Same(a, b int) bool {
	return u.Find(a) == u.Find(b)
}

// Len returns the number of tracked ids.
func (u *UnionFind) Len() int {
	return len(u.parent)
}
