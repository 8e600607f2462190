package btree

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"

	"simpledb/pager"
	"simpledb/row"
)

// ErrDuplicateKey is returned by Insert when the row's id already
// exists in the tree; the tree is left unmodified.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrTableFull is returned when a leaf split would need to allocate a
// page beyond pager.TableMaxPages. Non-fatal: the caller may still
// .exit cleanly and the rows inserted so far are preserved.
var ErrTableFull = errors.New("table full")

// Table is the single B+tree that backs the whole database file. The
// root always lives at page 0, for the lifetime of the file (§3).
type Table struct {
	Pager       *pager.Pager
	RootPageNum uint32
}

// Open opens (or creates) the database file at path and, if it is
// brand new, initializes page 0 as an empty root leaf.
func Open(path string) (*Table, error) {
	p, err := pager.Open(path)
	if err != nil {
		return nil, err
	}
	t := &Table{Pager: p, RootPageNum: 0}
	if p.NumPages() == 0 {
		root, err := p.GetPage(0)
		if err != nil {
			return nil, err
		}
		InitializeLeaf(root.Data[:])
		SetIsRoot(root.Data[:], true)
	}
	return t, nil
}

// Close flushes every dirty page and closes the underlying file.
func (t *Table) Close() error { return t.Pager.Close() }

func (t *Table) nodeBuf(pageNum uint32) ([]byte, error) {
	pg, err := t.Pager.GetPage(pageNum)
	if err != nil {
		return nil, err
	}
	return pg.Data[:], nil
}

// nodeMaxKey is get_node_max_key: the max key anywhere in pageNum's
// subtree. For a leaf that's the last cell's key; for an internal node
// the stored keys are not themselves subtree maxima, so it recurses
// down the right spine until it hits a leaf.
func (t *Table) nodeMaxKey(pageNum uint32) (uint32, error) {
	buf, err := t.nodeBuf(pageNum)
	if err != nil {
		return 0, err
	}
	if GetNodeType(buf) == NodeLeaf {
		return LeafMaxKey(buf), nil
	}
	return t.nodeMaxKey(InternalRightChild(buf))
}

// internalFindChild binary searches for the smallest cell index i such
// that key(i) >= key; used both for descent and for relocating a
// stored key during update_internal_node_key.
func internalFindChild(buf []byte, key uint32) uint32 {
	numKeys := InternalNumKeys(buf)
	idx := sort.Search(int(numKeys), func(i int) bool {
		return InternalKey(buf, uint32(i)) >= key
	})
	return uint32(idx)
}

// Find descends from the root to the leaf that should contain key,
// returning a cursor at the first cell whose key >= key (the
// insertion point, or the equality hit).
func (t *Table) Find(key uint32) (*Cursor, error) {
	return t.findFrom(t.RootPageNum, key)
}

func (t *Table) findFrom(pageNum uint32, key uint32) (*Cursor, error) {
	buf, err := t.nodeBuf(pageNum)
	if err != nil {
		return nil, err
	}
	if GetNodeType(buf) == NodeLeaf {
		return t.leafFind(pageNum, key)
	}
	return t.internalFind(pageNum, key)
}

func (t *Table) leafFind(pageNum uint32, key uint32) (*Cursor, error) {
	buf, err := t.nodeBuf(pageNum)
	if err != nil {
		return nil, err
	}
	numCells := LeafNumCells(buf)
	idx := sort.Search(int(numCells), func(i int) bool {
		return LeafKey(buf, uint32(i)) >= key
	})
	return &Cursor{table: t, PageNum: pageNum, CellNum: uint32(idx)}, nil
}

func (t *Table) internalFind(pageNum uint32, key uint32) (*Cursor, error) {
	buf, err := t.nodeBuf(pageNum)
	if err != nil {
		return nil, err
	}
	numKeys := InternalNumKeys(buf)
	idx := internalFindChild(buf, key)
	maxKeyInNode := InternalKey(buf, numKeys-1)

	var childPageNum uint32
	if key > maxKeyInNode {
		childPageNum = InternalRightChild(buf)
	} else {
		childPageNum = InternalChild(buf, idx)
	}
	return t.findFrom(childPageNum, key)
}

// Insert adds row r, keyed by r.ID, splitting and promoting up to and
// including the root as needed. Duplicate ids are rejected without
// mutating the tree.
func (t *Table) Insert(r row.Row) error {
	if err := r.Validate(); err != nil {
		return err
	}
	key := r.ID
	c, err := t.Find(key)
	if err != nil {
		return err
	}
	leafBuf, err := t.nodeBuf(c.PageNum)
	if err != nil {
		return err
	}
	if c.CellNum < LeafNumCells(leafBuf) && LeafKey(leafBuf, c.CellNum) == key {
		return ErrDuplicateKey
	}
	return t.leafInsert(c, key, r)
}

func (t *Table) leafInsert(c *Cursor, key uint32, r row.Row) error {
	buf, err := t.nodeBuf(c.PageNum)
	if err != nil {
		return err
	}
	numCells := LeafNumCells(buf)
	if numCells >= LeafNodeMaxCells {
		return t.leafSplitAndInsert(c, key, r)
	}
	if c.CellNum < numCells {
		for i := numCells; i > c.CellNum; i-- {
			copy(LeafCell(buf, i), LeafCell(buf, i-1))
		}
	}
	SetLeafNumCells(buf, numCells+1)
	SetLeafKey(buf, c.CellNum, key)
	row.Serialize(r, LeafValue(buf, c.CellNum))
	return nil
}

// leafSplitAndInsert redistributes the old leaf's cells plus the
// incoming one between the old leaf and a freshly allocated sibling,
// then fixes up the parent (or promotes a new root).
func (t *Table) leafSplitAndInsert(c *Cursor, key uint32, r row.Row) error {
	if t.Pager.NumPages() >= pager.TableMaxPages {
		return ErrTableFull
	}

	oldBuf, err := t.nodeBuf(c.PageNum)
	if err != nil {
		return err
	}
	oldMaxKey := LeafMaxKey(oldBuf)

	newPageNum := t.Pager.AllocatePage()
	newBuf, err := t.nodeBuf(newPageNum)
	if err != nil {
		return err
	}
	InitializeLeaf(newBuf)
	SetParent(newBuf, Parent(oldBuf))
	SetLeafNextLeaf(newBuf, LeafNextLeaf(oldBuf))
	SetLeafNextLeaf(oldBuf, newPageNum)

	for i := int(LeafNodeMaxCells); i >= 0; i-- {
		ii := uint32(i)
		var dest []byte
		if ii >= LeafNodeLeftSplitCount {
			dest = newBuf
		} else {
			dest = oldBuf
		}
		destIdx := ii % LeafNodeLeftSplitCount

		switch {
		case c.CellNum == ii:
			SetLeafKey(dest, destIdx, key)
			row.Serialize(r, LeafValue(dest, destIdx))
		case c.CellNum < ii:
			copy(LeafCell(dest, destIdx), LeafCell(oldBuf, ii-1))
		default:
			copy(LeafCell(dest, destIdx), LeafCell(oldBuf, ii))
		}
	}
	SetLeafNumCells(oldBuf, LeafNodeLeftSplitCount)
	SetLeafNumCells(newBuf, LeafNodeRightSplitCount)

	if IsRoot(oldBuf) {
		return t.createNewRoot(newPageNum)
	}

	newMaxKey := LeafMaxKey(oldBuf)
	parentPageNum := Parent(oldBuf)
	if err := t.updateInternalNodeKey(parentPageNum, oldMaxKey, newMaxKey); err != nil {
		return err
	}
	return t.internalNodeInsert(parentPageNum, newPageNum)
}

// createNewRoot installs a fresh internal root at the fixed root page
// number, cloning the previous root's content onto a newly allocated
// page so that "page 0 is root" holds for the file's entire lifetime.
func (t *Table) createNewRoot(rightPageNum uint32) error {
	rootBuf, err := t.nodeBuf(t.RootPageNum)
	if err != nil {
		return err
	}
	rightBuf, err := t.nodeBuf(rightPageNum)
	if err != nil {
		return err
	}

	wasInternal := GetNodeType(rootBuf) == NodeInternal
	if wasInternal {
		// rightPageNum is a freshly allocated, as-yet-unwritten page in
		// this path (internal root split); give it a clean header before
		// the split caller starts moving cells into it.
		InitializeInternal(rightBuf)
	}

	leftPageNum := t.Pager.AllocatePage()
	leftBuf, err := t.nodeBuf(leftPageNum)
	if err != nil {
		return err
	}
	copy(leftBuf, rootBuf)
	SetIsRoot(leftBuf, false)

	if GetNodeType(leftBuf) == NodeInternal {
		numKeys := InternalNumKeys(leftBuf)
		for i := uint32(0); i < numKeys; i++ {
			childBuf, err := t.nodeBuf(InternalChild(leftBuf, i))
			if err != nil {
				return err
			}
			SetParent(childBuf, leftPageNum)
		}
		childBuf, err := t.nodeBuf(InternalRightChild(leftBuf))
		if err != nil {
			return err
		}
		SetParent(childBuf, leftPageNum)
	}

	rootBuf, err = t.nodeBuf(t.RootPageNum)
	if err != nil {
		return err
	}
	InitializeInternal(rootBuf)
	SetIsRoot(rootBuf, true)
	SetInternalNumKeys(rootBuf, 1)
	SetInternalRightChild(rootBuf, rightPageNum)

	leftMaxKey, err := t.nodeMaxKey(leftPageNum)
	if err != nil {
		return err
	}
	SetInternalChild(rootBuf, 0, leftPageNum)
	SetInternalKey(rootBuf, 0, leftMaxKey)

	leftBuf, err = t.nodeBuf(leftPageNum)
	if err != nil {
		return err
	}
	SetParent(leftBuf, t.RootPageNum)
	rightBuf, err = t.nodeBuf(rightPageNum)
	if err != nil {
		return err
	}
	SetParent(rightBuf, t.RootPageNum)
	return nil
}

// updateInternalNodeKey relocates the stored key for the cell whose
// current value is oldKey and rewrites it as newKey — used after a
// child's subtree max shifts without the child itself moving.
func (t *Table) updateInternalNodeKey(parentPageNum, oldKey, newKey uint32) error {
	buf, err := t.nodeBuf(parentPageNum)
	if err != nil {
		return err
	}
	idx := internalFindChild(buf, oldKey)
	SetInternalKey(buf, idx, newKey)
	return nil
}

// internalNodeInsert splices childPageNum into parentPageNum, keyed by
// the child's own max key, splitting the parent if it's already full.
func (t *Table) internalNodeInsert(parentPageNum, childPageNum uint32) error {
	parentBuf, err := t.nodeBuf(parentPageNum)
	if err != nil {
		return err
	}
	childMaxKey, err := t.nodeMaxKey(childPageNum)
	if err != nil {
		return err
	}
	childIdx := internalFindChild(parentBuf, childMaxKey)
	numKeys := InternalNumKeys(parentBuf)

	if numKeys >= InternalNodeMaxKeys {
		return t.internalNodeSplitAndInsert(parentPageNum, childPageNum)
	}

	rightChildPageNum := InternalRightChild(parentBuf)
	if rightChildPageNum == InvalidPageNum {
		SetInternalRightChild(parentBuf, childPageNum)
		return t.setParent(childPageNum, parentPageNum)
	}

	rightMaxKey, err := t.nodeMaxKey(rightChildPageNum)
	if err != nil {
		return err
	}

	SetInternalNumKeys(parentBuf, numKeys+1)
	if childMaxKey > rightMaxKey {
		SetInternalChild(parentBuf, numKeys, rightChildPageNum)
		SetInternalKey(parentBuf, numKeys, rightMaxKey)
		SetInternalRightChild(parentBuf, childPageNum)
	} else {
		for i := numKeys; i > childIdx; i-- {
			copy(InternalCell(parentBuf, i), InternalCell(parentBuf, i-1))
		}
		SetInternalChild(parentBuf, childIdx, childPageNum)
		SetInternalKey(parentBuf, childIdx, childMaxKey)
	}
	return t.setParent(childPageNum, parentPageNum)
}

func (t *Table) setParent(pageNum, parentPageNum uint32) error {
	buf, err := t.nodeBuf(pageNum)
	if err != nil {
		return err
	}
	SetParent(buf, parentPageNum)
	return nil
}

// internalNodeSplitAndInsert splits a full internal node, pushing its
// former right child and its upper half of cells into a new sibling,
// demoting the node's new rightmost cell into its own right_child slot,
// and routing the incoming child to whichever side now owns its key
// range. The median key is pushed into the grandparent (or a brand new
// root, if parentPageNum itself is the root).
func (t *Table) internalNodeSplitAndInsert(parentPageNum, childPageNum uint32) error {
	oldPageNum := parentPageNum
	oldBuf, err := t.nodeBuf(oldPageNum)
	if err != nil {
		return err
	}
	oldMaxKey, err := t.nodeMaxKey(oldPageNum)
	if err != nil {
		return err
	}
	childMaxKey, err := t.nodeMaxKey(childPageNum)
	if err != nil {
		return err
	}

	newPageNum := t.Pager.AllocatePage()
	splittingRoot := IsRoot(oldBuf)

	var grandparentPageNum uint32
	if splittingRoot {
		if err := t.createNewRoot(newPageNum); err != nil {
			return err
		}
		grandparentPageNum = t.RootPageNum
		rootBuf, err := t.nodeBuf(t.RootPageNum)
		if err != nil {
			return err
		}
		oldPageNum = InternalChild(rootBuf, 0)
	} else {
		grandparentPageNum = Parent(oldBuf)
		newBuf, err := t.nodeBuf(newPageNum)
		if err != nil {
			return err
		}
		InitializeInternal(newBuf)
	}

	oldBuf, err = t.nodeBuf(oldPageNum)
	if err != nil {
		return err
	}
	oldRightChildPageNum := InternalRightChild(oldBuf)
	if err := t.internalNodeInsert(newPageNum, oldRightChildPageNum); err != nil {
		return err
	}

	oldBuf, err = t.nodeBuf(oldPageNum)
	if err != nil {
		return err
	}
	SetInternalRightChild(oldBuf, InvalidPageNum)

	for i := int(InternalNodeMaxKeys) - 1; i > int(InternalNodeMaxKeys)/2; i-- {
		oldBuf, err = t.nodeBuf(oldPageNum)
		if err != nil {
			return err
		}
		oldChildPageNum := InternalChild(oldBuf, uint32(i))
		if err := t.internalNodeInsert(newPageNum, oldChildPageNum); err != nil {
			return err
		}
		oldBuf, err = t.nodeBuf(oldPageNum)
		if err != nil {
			return err
		}
		SetInternalNumKeys(oldBuf, InternalNumKeys(oldBuf)-1)
	}

	oldBuf, err = t.nodeBuf(oldPageNum)
	if err != nil {
		return err
	}
	numKeys := InternalNumKeys(oldBuf)
	SetInternalRightChild(oldBuf, InternalChild(oldBuf, numKeys-1))
	SetInternalNumKeys(oldBuf, numKeys-1)

	oldNewMaxKey, err := t.nodeMaxKey(oldPageNum)
	if err != nil {
		return err
	}

	destinationPageNum := newPageNum
	if childMaxKey < oldNewMaxKey {
		destinationPageNum = oldPageNum
	}
	if err := t.internalNodeInsert(destinationPageNum, childPageNum); err != nil {
		return err
	}

	if err := t.updateInternalNodeKey(grandparentPageNum, oldMaxKey, oldNewMaxKey); err != nil {
		return err
	}

	if !splittingRoot {
		if err := t.internalNodeInsert(grandparentPageNum, newPageNum); err != nil {
			return err
		}
	}
	return nil
}

// PrintTree writes an indent-per-depth listing of the tree rooted at
// pageNum to w, in the shape the .btree meta-command expects: each
// leaf reports its cell count and keys, each internal node its key
// count, recursing into every child in order and printing its
// separator key after returning.
func (t *Table) PrintTree(w io.Writer, pageNum uint32, depth int) error {
	buf, err := t.nodeBuf(pageNum)
	if err != nil {
		return err
	}
	switch GetNodeType(buf) {
	case NodeLeaf:
		numCells := LeafNumCells(buf)
		fmt.Fprintf(w, "%s- leaf (size %d)\n", indent(depth), numCells)
		for i := uint32(0); i < numCells; i++ {
			fmt.Fprintf(w, "%s- %d\n", indent(depth+1), LeafKey(buf, i))
		}
	case NodeInternal:
		numKeys := InternalNumKeys(buf)
		fmt.Fprintf(w, "%s- internal (size %d)\n", indent(depth), numKeys)
		for i := uint32(0); i < numKeys; i++ {
			if err := t.PrintTree(w, InternalChild(buf, i), depth+1); err != nil {
				return err
			}
			fmt.Fprintf(w, "%s- key %d\n", indent(depth+1), InternalKey(buf, i))
		}
		if numKeys > 0 {
			if err := t.PrintTree(w, InternalRightChild(buf), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func indent(depth int) string {
	s := make([]byte, depth*2)
	for i := range s {
		s[i] = ' '
	}
	return string(s)
}
