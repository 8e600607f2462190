package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"simpledb/btree"
)

func printPrompt(w io.Writer) {
	fmt.Fprint(w, "simple_db > ")
}

func readInput(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\n"), nil
}

// Run drives the REPL loop: read a line from in, echo the prompt and
// any output to out, until .exit or EOF. A fatal storage error aborts
// the loop and is returned to the caller, which is responsible for
// treating it as a process-ending condition.
func Run(in io.Reader, out io.Writer, dbPath string) error {
	tbl, err := btree.Open(dbPath)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(in)
	for {
		printPrompt(out)
		line, err := readInput(reader)
		if err != nil {
			if err == io.EOF {
				return tbl.Close()
			}
			return err
		}

		if strings.HasPrefix(line, ".") {
			switch doMetaCommand(line, tbl, out) {
			case MetaCommandExit:
				return tbl.Close()
			case MetaCommandSuccess:
				continue
			case MetaCommandUnrecognized:
				fmt.Fprintf(out, "Unrecognized meta command %s\n", line)
				continue
			}
		}

		var stmt Statement
		switch prepareStatement(line, &stmt) {
		case PrepareSuccess:
		case PrepareInvalidID:
			fmt.Fprintln(out, "Error: Invalid userId!")
			continue
		case PrepareUsernameTooLong:
			fmt.Fprintln(out, "Error: Username character length is too long!")
			continue
		case PrepareEmailTooLong:
			fmt.Fprintln(out, "Error: Email character length is too long!")
			continue
		case PrepareSyntaxError:
			fmt.Fprintf(out, "Syntax Error! Could not parse statement: %s\n", line)
			continue
		case PrepareUnrecognizedStatement:
			fmt.Fprintf(out, "Unrecognized Statement received %s\n", line)
			continue
		}

		result, err := executeStatement(&stmt, tbl, out)
		if err != nil {
			return err
		}
		switch result {
		case ExecuteSuccess:
			fmt.Fprintln(out, "Execution Succeeded!")
		case ExecuteTableFull:
			fmt.Fprintln(out, "Table is completely full, no space left to add new row!")
		case ExecuteDuplicateKey:
			fmt.Fprintf(out, "Error: Duplicate Key already present in table: %d\n", stmt.RowToInsert.ID)
		}
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Error: db filename not provided!")
		os.Exit(1)
	}

	if err := Run(os.Stdin, os.Stdout, os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "simpledb: %v\n", err)
		os.Exit(1)
	}
}
