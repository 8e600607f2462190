package btree

import "encoding/binary"

// NodeType distinguishes a leaf page from an internal page via the
// first byte of the common header.
type NodeType uint8

const (
	NodeLeaf NodeType = iota
	NodeInternal
)

// GetNodeType, IsRoot, and Parent/SetParent are the three fields every
// page carries in its first CommonNodeHeaderSize bytes, regardless of
// whether the rest of the page is a leaf or an internal node body.

func GetNodeType(buf []byte) NodeType { return NodeType(buf[NodeTypeOffset]) }

func SetNodeType(buf []byte, t NodeType) { buf[NodeTypeOffset] = byte(t) }

func IsRoot(buf []byte) bool { return buf[IsRootOffset] != 0 }

func SetIsRoot(buf []byte, isRoot bool) {
	if isRoot {
		buf[IsRootOffset] = 1
	} else {
		buf[IsRootOffset] = 0
	}
}

func Parent(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[ParentPointerOffset : ParentPointerOffset+4])
}

func SetParent(buf []byte, pageNum uint32) {
	binary.LittleEndian.PutUint32(buf[ParentPointerOffset:ParentPointerOffset+4], pageNum)
}
