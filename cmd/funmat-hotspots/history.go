package main

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	recorded_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS counters (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	calling TEXT NOT NULL,
	callee  TEXT NOT NULL,
	count   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS counters_pair ON counters (calling, callee);
`

func openHistory(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening history db %s", path)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "initializing history db %s", path)
	}
	return db, nil
}

// recordRun stores one dump's rows under a fresh run id.
func recordRun(path string, rows []counterRow) error {
	db, err := openHistory(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting history transaction")
	}
	defer tx.Rollback()

	runID := uuid.New().String()
	if _, err := tx.Exec(
		"INSERT INTO runs (id, recorded_at) VALUES (?, ?)",
		runID, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return errors.Wrap(err, "inserting run")
	}

	stmt, err := tx.Prepare(
		"INSERT INTO counters (run_id, calling, callee, count) VALUES (?, ?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "preparing counter insert")
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(runID, row.Calling, row.Callee, int64(row.Count)); err != nil {
			return errors.Wrap(err, "inserting counter row")
		}
	}

	return errors.Wrap(tx.Commit(), "committing history transaction")
}

// historyTotals sums every recorded run per calling/callee pair.
func historyTotals(path string) ([]counterRow, error) {
	db, err := openHistory(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(
		"SELECT calling, callee, SUM(count) FROM counters GROUP BY calling, callee")
	if err != nil {
		return nil, errors.Wrap(err, "querying history totals")
	}
	defer rows.Close()

	var out []counterRow
	for rows.Next() {
		var row counterRow
		var total int64
		if err := rows.Scan(&row.Calling, &row.Callee, &total); err != nil {
			return nil, errors.Wrap(err, "scanning history row")
		}
		if total < 0 {
			total = 0
		}
		row.Count = uint32(total)
		out = append(out, row)
	}
	return out, errors.Wrap(rows.Err(), "iterating history rows")
}
