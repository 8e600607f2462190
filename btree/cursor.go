package btree

import "simpledb/row"

// Cursor tracks a position within the leaf chain: a page number and a
// cell index, plus whether advancing past the current cell runs off
// the end of the table.
type Cursor struct {
	table      *Table
	PageNum    uint32
	CellNum    uint32
	EndOfTable bool
}

// Start returns a cursor at the first row of the table (table_start):
// find(0) always lands on the leftmost leaf's first cell, since no key
// is less than 0.
func (t *Table) Start() (*Cursor, error) {
	c, err := t.Find(0)
	if err != nil {
		return nil, err
	}
	buf, err := t.nodeBuf(c.PageNum)
	if err != nil {
		return nil, err
	}
	c.EndOfTable = LeafNumCells(buf) == 0
	return c, nil
}

// Value deserializes the row at the cursor's current position.
func (c *Cursor) Value() (row.Row, error) {
	buf, err := c.table.nodeBuf(c.PageNum)
	if err != nil {
		return row.Row{}, err
	}
	return row.Deserialize(LeafValue(buf, c.CellNum)), nil
}

// Advance moves to the next cell, following the leaf chain's
// next_leaf_page_num pointer when the current leaf is exhausted, and
// setting EndOfTable once the chain's sentinel (0) is reached.
func (c *Cursor) Advance() error {
	buf, err := c.table.nodeBuf(c.PageNum)
	if err != nil {
		return err
	}
	c.CellNum++
	if c.CellNum >= LeafNumCells(buf) {
		next := LeafNextLeaf(buf)
		if next == 0 {
			c.EndOfTable = true
		} else {
			c.PageNum = next
			c.CellNum = 0
		}
	}
	return nil
}
