package btree

import (
	"path/filepath"
	"testing"
)

func TestStartOnEmptyTableIsEndOfTable(t *testing.T) {
	tbl, err := Open(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tbl.Close()

	c, err := tbl.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !c.EndOfTable {
		t.Errorf("Start on empty table: EndOfTable = false; want true")
	}
}

func TestAdvancePastLastCellSetsEndOfTable(t *testing.T) {
	tbl, err := Open(filepath.Join(t.TempDir(), "one.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tbl.Close()

	if err := tbl.Insert(testRow(1)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	c, err := tbl.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.EndOfTable {
		t.Fatalf("EndOfTable = true before reading the only row")
	}
	if err := c.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !c.EndOfTable {
		t.Errorf("EndOfTable = false after advancing past the only row")
	}
}

func TestAdvanceCrossesLeafBoundary(t *testing.T) {
	tbl, err := Open(filepath.Join(t.TempDir(), "many.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tbl.Close()

	const n = 30
	for id := uint32(1); id <= n; id++ {
		if err := tbl.Insert(testRow(id)); err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
	}

	c, err := tbl.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	startPage := c.PageNum
	crossedLeaf := false
	count := 0
	for !c.EndOfTable {
		count++
		if c.PageNum != startPage {
			crossedLeaf = true
		}
		if err := c.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	if count != n {
		t.Fatalf("scanned %d rows; want %d", count, n)
	}
	if !crossedLeaf {
		t.Errorf("expected the cursor to cross into a sibling leaf via next_leaf_page_num")
	}
}
