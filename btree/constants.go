package btree

import (
	"math"
	"unsafe"

	"simpledb/pager"
	"simpledb/row"
)

// Common node header layout: node_type(1) | is_root(1) | parent_page_num(4).
const (
	NodeTypeSize        = unsafe.Sizeof(uint8(0))
	NodeTypeOffset      = 0
	IsRootSize          = unsafe.Sizeof(uint8(0))
	IsRootOffset        = NodeTypeOffset + NodeTypeSize
	ParentPointerSize   = unsafe.Sizeof(uint32(0))
	ParentPointerOffset = IsRootOffset + IsRootSize

	CommonNodeHeaderSize = NodeTypeSize + IsRootSize + ParentPointerSize
)

// Leaf node header layout: common header + num_cells(4) + next_leaf_page_num(4).
const (
	LeafNodeNumCellsSize   = unsafe.Sizeof(uint32(0))
	LeafNodeNumCellsOffset = CommonNodeHeaderSize
	LeafNodeNextLeafSize   = unsafe.Sizeof(uint32(0))
	LeafNodeNextLeafOffset = LeafNodeNumCellsOffset + LeafNodeNumCellsSize

	LeafNodeHeaderSize = uint32(CommonNodeHeaderSize + LeafNodeNumCellsSize + LeafNodeNextLeafSize)
)

// Leaf node body layout: each cell is {key(4), row.Size-byte row}.
const (
	LeafNodeKeySize     = 4
	LeafNodeKeyOffset   = 0
	LeafNodeValueOffset = LeafNodeKeyOffset + LeafNodeKeySize
	LeafNodeValueSize   = uint32(row.Size)
	LeafNodeCellSize    = uint32(LeafNodeKeySize) + LeafNodeValueSize

	LeafNodeSpaceForCells   = uint32(pager.PageSize) - LeafNodeHeaderSize
	LeafNodeMaxCells        = LeafNodeSpaceForCells / LeafNodeCellSize
	LeafNodeRightSplitCount = (LeafNodeMaxCells + 1) / 2
	LeafNodeLeftSplitCount  = (LeafNodeMaxCells + 1) - LeafNodeRightSplitCount
)

// Internal node header layout: common header + num_keys(4) + right_child_page_num(4).
const (
	InternalNodeNumKeysSize      = unsafe.Sizeof(uint32(0))
	InternalNodeNumKeysOffset    = CommonNodeHeaderSize
	InternalNodeRightChildSize   = unsafe.Sizeof(uint32(0))
	InternalNodeRightChildOffset = InternalNodeNumKeysOffset + InternalNodeNumKeysSize

	InternalNodeHeaderSize = uint32(CommonNodeHeaderSize + InternalNodeNumKeysSize + InternalNodeRightChildSize)
)

// Internal node body layout: packed {child_page_num(4), key(4)} cells.
const (
	InternalNodeChildSize = 4
	InternalNodeKeySize   = 4
	InternalNodeCellSize  = InternalNodeChildSize + InternalNodeKeySize

	// InternalNodeMaxKeys is hard-coded small to force branching during
	// tests, matching the original tutorial; a production build would
	// derive it from page size like LeafNodeMaxCells does.
	InternalNodeMaxKeys = 3
)

// InvalidPageNum is the right_child sentinel for an internal node that
// has not yet been given its first child (the new sibling page created
// by an internal node split).
const InvalidPageNum = math.MaxUint32
