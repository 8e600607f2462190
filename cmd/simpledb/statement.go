package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"simpledb/btree"
	"simpledb/row"
)

type StatementType int

const (
	StatementInsert StatementType = iota
	StatementSelect
)

type Statement struct {
	Type        StatementType
	RowToInsert row.Row
}

type PrepareResult int

const (
	PrepareSuccess PrepareResult = iota
	PrepareUnrecognizedStatement
	PrepareSyntaxError
	PrepareInvalidID
	PrepareUsernameTooLong
	PrepareEmailTooLong
)

type ExecuteResult int

const (
	ExecuteSuccess ExecuteResult = iota
	ExecuteDuplicateKey
	ExecuteTableFull
)

// prepareStatement parses one input line into a Statement. insert
// takes exactly "insert <id> <username> <email>"; select takes no
// arguments. Field-level validation (id, username/email length) happens
// here, against the same length limits row.Validate uses, and is
// reported as a PrepareResult.
func prepareStatement(line string, stmt *Statement) PrepareResult {
	if strings.HasPrefix(line, "insert") {
		stmt.Type = StatementInsert

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return PrepareSyntaxError
		}
		idString, username, email := fields[1], fields[2], fields[3]

		id, err := strconv.Atoi(idString)
		if err != nil || id < 0 {
			return PrepareInvalidID
		}
		if len(username) > row.MaxUsernameLen {
			return PrepareUsernameTooLong
		}
		if len(email) > row.MaxEmailLen {
			return PrepareEmailTooLong
		}

		stmt.RowToInsert = row.Row{ID: uint32(id), Username: username, Email: email}
		return PrepareSuccess
	}

	if line == "select" {
		stmt.Type = StatementSelect
		return PrepareSuccess
	}

	return PrepareUnrecognizedStatement
}

// executeStatement runs stmt against tbl. The returned error is only
// ever non-nil for a storage error the REPL treats as fatal (a
// pager.FatalError or a wrapped I/O error) — duplicate keys and a full
// table are reported through ExecuteResult instead,
// since the REPL must keep running after those.
func executeStatement(stmt *Statement, tbl *btree.Table, w io.Writer) (ExecuteResult, error) {
	switch stmt.Type {
	case StatementInsert:
		return executeInsert(stmt, tbl)
	case StatementSelect:
		return executeSelect(tbl, w)
	}
	return ExecuteSuccess, nil
}

func executeInsert(stmt *Statement, tbl *btree.Table) (ExecuteResult, error) {
	err := tbl.Insert(stmt.RowToInsert)
	switch err {
	case nil:
		return ExecuteSuccess, nil
	case btree.ErrDuplicateKey:
		return ExecuteDuplicateKey, nil
	case btree.ErrTableFull:
		return ExecuteTableFull, nil
	default:
		return ExecuteSuccess, err
	}
}

func executeSelect(tbl *btree.Table, w io.Writer) (ExecuteResult, error) {
	c, err := tbl.Start()
	if err != nil {
		return ExecuteSuccess, err
	}
	for !c.EndOfTable {
		r, err := c.Value()
		if err != nil {
			return ExecuteSuccess, err
		}
		fmt.Fprintf(w, "(%d, %s, %s)\n", r.ID, r.Username, r.Email)
		if err := c.Advance(); err != nil {
			return ExecuteSuccess, err
		}
	}
	return ExecuteSuccess, nil
}
