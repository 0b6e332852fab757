package branch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
	"golang.org/x/exp/slices"
)

// Tree reads the events of one ROOT tree.
//
// Only the branches requested at Open are loaded, together with the count
// leaves of variable-length array branches. Accessors refer to the entry
// currently being processed by Each.
type Tree struct {
	file *riofs.File
	tree rtree.Tree

	mu    sync.Mutex
	rvars []rtree.ReadVar
	vars  map[string]any
	entry int64
}

// Open opens the tree treeName of the file at path and prepares the listed
// branches for reading. Requested branches that don't exist are an error.
func Open(path, treeName string, branches []string) (*Tree, error) {
	return open(path, treeName, func(tree rtree.Tree, _ []rtree.ReadVar) ([]string, error) {
		for _, name := range branches {
			if tree.Branch(name) == nil {
				return nil, fmt.Errorf("branch %s does not exist in %s", name, path)
			}
		}
		return branches, nil
	})
}

// OpenFiltered is like Open, but prepares every branch for which keep
// returns true
func OpenFiltered(path, treeName string, keep func(name string) bool) (*Tree, error) {
	return open(path, treeName, func(_ rtree.Tree, all []rtree.ReadVar) ([]string, error) {
		var names []string
		for _, rv := range all {
			if keep(rv.Name) {
				names = append(names, rv.Name)
			}
		}
		return names, nil
	})
}

func open(path, treeName string, selectBranches func(tree rtree.Tree, all []rtree.ReadVar) ([]string, error)) (*Tree, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	obj, err := f.Get(treeName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to find tree %s in %s: %w", treeName, path, err)
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		_ = f.Close()
		return nil, fmt.Errorf("%s in %s is not a tree", treeName, path)
	}

	all := rtree.NewReadVars(tree)
	branches, err := selectBranches(tree, all)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	wanted := map[string]bool{}
	for _, name := range branches {
		wanted[name] = true
	}
	// variable-length branches need their count leaf
	for _, rv := range all {
		if !wanted[rv.Name] {
			continue
		}
		if l := tree.Leaf(rv.Leaf); l != nil && l.LeafCount() != nil {
			wanted[l.LeafCount().Name()] = true
		}
	}
	t := &Tree{file: f, tree: tree, vars: map[string]any{}, entry: -1}
	for _, rv := range all {
		if wanted[rv.Name] {
			t.rvars = append(t.rvars, rv)
			t.vars[rv.Name] = rv.Value
		}
	}
	return t, nil
}

// Close releases the file
func (t *Tree) Close() error {
	return t.file.Close()
}

// Entries returns the number of entries in the tree
func (t *Tree) Entries() int64 {
	return t.tree.Entries()
}

// Branches returns the names of the loaded branches, sorted
func (t *Tree) Branches() []string {
	names := make([]string, 0, len(t.vars))
	for name := range t.vars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Entry returns the entry currently loaded, -1 before the first one
func (t *Tree) Entry() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entry
}

// Each loads entries one by one and calls fn for each. maxEntries < 0 means
// all entries. Each stops early when ctx is closed or fn returns an error.
func (t *Tree) Each(ctx context.Context, maxEntries int64, fn func(entry int64) error) error {
	end := t.tree.Entries()
	if maxEntries >= 0 && maxEntries < end {
		end = maxEntries
	}
	r, err := rtree.NewReader(t.tree, t.rvars, rtree.WithRange(0, end))
	if err != nil {
		return fmt.Errorf("failed to create tree reader: %w", err)
	}
	defer r.Close()

	err = r.Read(func(rctx rtree.RCtx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.mu.Lock()
		t.entry = rctx.Entry
		t.mu.Unlock()
		return fn(rctx.Entry)
	})
	if err != nil && !errors.Is(err, ctx.Err()) {
		return fmt.Errorf("failed to read entry %d: %w", t.Entry(), err)
	}
	return err
}

func (t *Tree) get(name string) any {
	v, ok := t.vars[name]
	if !ok {
		panic(fmt.Errorf("branch %s is not loaded", name))
	}
	return v
}

// HasBranch implements quarry.Branches
func (t *Tree) HasBranch(name string) bool {
	_, ok := t.vars[name]
	return ok
}

// Value implements quarry.Branches
func (t *Tree) Value(name string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return asFloat(name, scalar(name, t.get(name)))
}

// Int implements quarry.Branches
func (t *Tree) Int(name string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return asInt(name, scalar(name, t.get(name)))
}

// Uint implements quarry.Branches
func (t *Tree) Uint(name string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return asUint(name, scalar(name, t.get(name)))
}

// Len implements quarry.Branches
func (t *Tree) Len(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return array(name, t.get(name)).Len()
}

// At implements quarry.Branches
func (t *Tree) At(name string, i int) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return asFloat(name, element(name, t.get(name), i))
}

// IntAt implements quarry.Branches
func (t *Tree) IntAt(name string, i int) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return asInt(name, element(name, t.get(name), i))
}
