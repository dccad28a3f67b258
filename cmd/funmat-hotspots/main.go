// Command funmat-hotspots inspects profiler counter dumps: it prints
// the hottest signatures of a counters.out file and can record runs
// into a SQLite history database for cross-run comparison.
//
// Usage:
//
//	funmat-hotspots [-n 20] [-db history.db] [counters.out]
//	funmat-hotspots -history -db history.db [-n 20]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/funvibe/funmat/internal/config"
)

type counterRow struct {
	Calling string
	Callee  string
	Count   uint32
}

func main() {
	topN := flag.Int("n", 20, "number of hotspots to print")
	dbPath := flag.String("db", "", "SQLite history database (optional)")
	history := flag.Bool("history", false, "print accumulated history instead of one dump")
	flag.Parse()

	if *history {
		if *dbPath == "" {
			fmt.Fprintln(os.Stderr, "funmat-hotspots: -history needs -db")
			os.Exit(2)
		}
		rows, err := historyTotals(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "funmat-hotspots: %v\n", err)
			os.Exit(1)
		}
		printTop(rows, *topN)
		return
	}

	path := config.DefaultDumpPath
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	rows, err := readDump(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "funmat-hotspots: %v\n", err)
		os.Exit(1)
	}

	if *dbPath != "" {
		if err := recordRun(*dbPath, rows); err != nil {
			fmt.Fprintf(os.Stderr, "funmat-hotspots: recording history: %v\n", err)
			os.Exit(1)
		}
	}

	printTop(rows, *topN)
}

// readDump parses a counters.out file. Rows are
// "calling","callee",count with both signature halves quoted because
// argument strings contain commas.
func readDump(path string) ([]counterRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening dump %s", path)
	}
	defer f.Close()

	var rows []counterRow
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			if line != "calling,callee,count" {
				return nil, errors.Errorf("unexpected header %q in %s", line, path)
			}
			continue
		}
		row, err := parseRow(line)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading dump %s", path)
	}
	return rows, nil
}

func parseRow(line string) (counterRow, error) {
	calling, rest, err := readQuoted(line)
	if err != nil {
		return counterRow{}, err
	}
	callee, rest, err := readQuoted(rest)
	if err != nil {
		return counterRow{}, err
	}
	count, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		return counterRow{}, errors.Wrapf(err, "bad count in row %q", line)
	}
	return counterRow{Calling: calling, Callee: callee, Count: uint32(count)}, nil
}

// readQuoted strips one leading quoted field plus the following comma.
func readQuoted(s string) (field, rest string, err error) {
	unquoted, after, uerr := unquotePrefix(s)
	if uerr != nil {
		return "", "", uerr
	}
	if !strings.HasPrefix(after, ",") {
		return "", "", errors.Errorf("missing separator after field in %q", s)
	}
	return unquoted, after[1:], nil
}

func unquotePrefix(s string) (string, string, error) {
	if !strings.HasPrefix(s, `"`) {
		return "", "", errors.Errorf("field in %q is not quoted", s)
	}
	for i := 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '"' {
			unquoted, err := strconv.Unquote(s[:i+1])
			if err != nil {
				return "", "", errors.Wrapf(err, "bad field in %q", s)
			}
			return unquoted, s[i+1:], nil
		}
	}
	return "", "", errors.Errorf("unterminated field in %q", s)
}

func printTop(rows []counterRow, n int) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Callee < rows[j].Callee
	})
	if n > len(rows) {
		n = len(rows)
	}

	useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	for i := 0; i < n; i++ {
		row := rows[i]
		line := fmt.Sprintf("%8d  %s -> %s", row.Count, row.Calling, row.Callee)
		if useColor && i < 3 {
			// The top entries are the ones worth recompiling first.
			line = "\x1b[1;31m" + line + "\x1b[0m"
		}
		fmt.Println(line)
	}
}
