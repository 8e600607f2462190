// Package btree implements the paged B+tree storage engine: the node
// codec (this file and header.go), the insert/split algorithms
// (tree.go), and the cursor (cursor.go). Every codec function here is a
// pure accessor over a page's raw byte buffer — no node type is ever
// deserialized into a Go struct and written back; the buffer itself is
// the node, read and mutated in place exactly the way the C original
// (_examples/original_source/splitting_internal_nodes.c) operates on
// `void *node`.
package btree

import "encoding/binary"

// --- Leaf node body ---

func LeafNumCells(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[LeafNodeNumCellsOffset : LeafNodeNumCellsOffset+4])
}

func SetLeafNumCells(buf []byte, n uint32) {
	binary.LittleEndian.PutUint32(buf[LeafNodeNumCellsOffset:LeafNodeNumCellsOffset+4], n)
}

func LeafNextLeaf(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[LeafNodeNextLeafOffset : LeafNodeNextLeafOffset+4])
}

func SetLeafNextLeaf(buf []byte, pageNum uint32) {
	binary.LittleEndian.PutUint32(buf[LeafNodeNextLeafOffset:LeafNodeNextLeafOffset+4], pageNum)
}

// leafCellOffset returns the byte offset of cell i within the page.
func leafCellOffset(i uint32) uint32 {
	return LeafNodeHeaderSize + i*LeafNodeCellSize
}

func LeafKey(buf []byte, i uint32) uint32 {
	off := leafCellOffset(i) + LeafNodeKeyOffset
	return binary.LittleEndian.Uint32(buf[off : off+4])
}

func SetLeafKey(buf []byte, i uint32, key uint32) {
	off := leafCellOffset(i) + LeafNodeKeyOffset
	binary.LittleEndian.PutUint32(buf[off:off+4], key)
}

// LeafValue returns the row.Size-byte slice holding cell i's serialized row.
func LeafValue(buf []byte, i uint32) []byte {
	off := leafCellOffset(i) + LeafNodeValueOffset
	return buf[off : off+LeafNodeValueSize]
}

// LeafCell returns the full key+value slice for cell i, used to splice
// whole cells during insert shifts and splits.
func LeafCell(buf []byte, i uint32) []byte {
	off := leafCellOffset(i)
	return buf[off : off+LeafNodeCellSize]
}

// LeafMaxKey is the last key in the leaf — leaves are kept in strictly
// ascending order, so the last cell holds the subtree (here, node) max.
func LeafMaxKey(buf []byte) uint32 {
	return LeafKey(buf, LeafNumCells(buf)-1)
}

func InitializeLeaf(buf []byte) {
	SetNodeType(buf, NodeLeaf)
	SetIsRoot(buf, false)
	SetLeafNumCells(buf, 0)
	SetLeafNextLeaf(buf, 0)
}

// --- Internal node body ---

func InternalNumKeys(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[InternalNodeNumKeysOffset : InternalNodeNumKeysOffset+4])
}

func SetInternalNumKeys(buf []byte, n uint32) {
	binary.LittleEndian.PutUint32(buf[InternalNodeNumKeysOffset:InternalNodeNumKeysOffset+4], n)
}

func InternalRightChild(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[InternalNodeRightChildOffset : InternalNodeRightChildOffset+4])
}

func SetInternalRightChild(buf []byte, pageNum uint32) {
	binary.LittleEndian.PutUint32(buf[InternalNodeRightChildOffset:InternalNodeRightChildOffset+4], pageNum)
}

func internalCellOffset(i uint32) uint32 {
	return InternalNodeHeaderSize + i*InternalNodeCellSize
}

// InternalChild returns child i, or the right_child when i == num_keys.
// Dereferencing an invalid sentinel is a caller bug, not a soft error:
// it means the "empty internal node" case wasn't handled upstream.
func InternalChild(buf []byte, i uint32) uint32 {
	numKeys := InternalNumKeys(buf)
	if i > numKeys {
		panic("btree: internal node child index out of bounds")
	}
	if i == numKeys {
		rc := InternalRightChild(buf)
		if rc == InvalidPageNum {
			panic("btree: tried to access right child of an empty internal node")
		}
		return rc
	}
	off := internalCellOffset(i)
	child := binary.LittleEndian.Uint32(buf[off : off+4])
	if child == InvalidPageNum {
		panic("btree: tried to access an invalid child page")
	}
	return child
}

func SetInternalChild(buf []byte, i uint32, pageNum uint32) {
	off := internalCellOffset(i)
	binary.LittleEndian.PutUint32(buf[off:off+4], pageNum)
}

func InternalKey(buf []byte, i uint32) uint32 {
	off := internalCellOffset(i) + InternalNodeChildSize
	return binary.LittleEndian.Uint32(buf[off : off+4])
}

func SetInternalKey(buf []byte, i uint32, key uint32) {
	off := internalCellOffset(i) + InternalNodeChildSize
	binary.LittleEndian.PutUint32(buf[off:off+4], key)
}

// InternalCell returns the full child+key slice for cell i.
func InternalCell(buf []byte, i uint32) []byte {
	off := internalCellOffset(i)
	return buf[off : off+InternalNodeCellSize]
}

func InitializeInternal(buf []byte) {
	SetNodeType(buf, NodeInternal)
	SetIsRoot(buf, false)
	SetInternalNumKeys(buf, 0)
	SetInternalRightChild(buf, InvalidPageNum)
}
