package main

import (
	"fmt"
	"io"

	"simpledb/btree"
	"simpledb/row"
)

type MetaCommandResult int

const (
	MetaCommandSuccess MetaCommandResult = iota
	MetaCommandExit
	MetaCommandUnrecognized
)

// doMetaCommand handles every "." command. .exit reports
// MetaCommandExit so the caller can close the table and return cleanly
// instead of this function reaching for os.Exit itself.
func doMetaCommand(line string, tbl *btree.Table, w io.Writer) MetaCommandResult {
	switch line {
	case ".exit":
		return MetaCommandExit
	case ".constants":
		fmt.Fprintln(w, "Constants:")
		printConstants(w)
	case ".btree":
		fmt.Fprintln(w, "Btree:")
		tbl.PrintTree(w, tbl.RootPageNum, 0)
	default:
		return MetaCommandUnrecognized
	}
	return MetaCommandSuccess
}

func printConstants(w io.Writer) {
	fmt.Fprintf(w, "ROW_SIZE: %d\n", row.Size)
	fmt.Fprintf(w, "COMMON_NODE_HEADER_SIZE: %d\n", btree.CommonNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_HEADER_SIZE: %d\n", btree.LeafNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_CELL_SIZE: %d\n", btree.LeafNodeCellSize)
	fmt.Fprintf(w, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", btree.LeafNodeSpaceForCells)
	fmt.Fprintf(w, "LEAF_NODE_MAX_CELLS: %d\n", btree.LeafNodeMaxCells)
}
