// Package store archives evaluation runs in SQLite so results of different
// table sets or solver settings can be compared later.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ja7ad/beamquality/pkg/compare"
	"github.com/ja7ad/beamquality/pkg/report"
)

// ErrRunNotFound indicates an unknown run id.
var ErrRunNotFound = errors.New("store: run not found")

// DB wraps a SQLite connection holding archived runs.
type DB struct {
	conn *sqlx.DB
}

// Run is one invocation over a set of qualities.
type Run struct {
	ID      string
	Created time.Time
	Config  string
	Records []report.Record
}

// RunInfo is a run without its records.
type RunInfo struct {
	ID      string
	Created time.Time
	Config  string
	Count   int
}

type runRow struct {
	ID      string `db:"id"`
	Created string `db:"created_at"`
	Config  string `db:"config"`
	Count   int    `db:"count"`
}

// fixed width so that created_at sorts lexically
const _timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		config TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		quality_id TEXT NOT NULL,
		material TEXT NOT NULL,
		mean_energy_kev REAL,
		hvl1_mm REAL,
		hvl2_mm REAL,
		mean_hk REAL,
		error TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS deviations (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		source TEXT NOT NULL,
		mean_energy_pct REAL,
		hvl1_pct REAL,
		hvl2_pct REAL,
		PRIMARY KEY (run_id, seq, source)
	);

	CREATE INDEX IF NOT EXISTS idx_results_quality ON results(quality_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// nullable stores NaN as NULL.
func nullable(x float64) sql.NullFloat64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: x, Valid: true}
}

func value(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}

// SaveRun stores run and its records in one transaction and returns the
// run id. An empty ID gets a new UUID; a zero Created time is set to now.
func (db *DB) SaveRun(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Created.IsZero() {
		run.Created = time.Now()
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT INTO runs (id, created_at, config) VALUES (?, ?, ?)",
		run.ID, run.Created.UTC().Format(_timeFormat), run.Config); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	res, err := tx.Preparex(`INSERT INTO results
		(run_id, seq, quality_id, material, mean_energy_kev, hvl1_mm, hvl2_mm, mean_hk, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer res.Close()

	dev, err := tx.Preparex(`INSERT INTO deviations
		(run_id, seq, source, mean_energy_pct, hvl1_pct, hvl2_pct)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer dev.Close()

	for i, r := range run.Records {
		if _, err := res.Exec(run.ID, i, r.QualityID, r.Material,
			nullable(r.MeanEnergy), nullable(r.HVL1), nullable(r.HVL2), nullable(r.MeanHK), r.Error); err != nil {
			return "", fmt.Errorf("save result %s: %w", r.QualityID, err)
		}
		for src, d := range r.Deviations {
			if _, err := dev.Exec(run.ID, i, src,
				nullable(d.MeanEnergy), nullable(d.HVL1), nullable(d.HVL2)); err != nil {
				return "", fmt.Errorf("save deviation %s/%s: %w", r.QualityID, src, err)
			}
		}
	}

	return run.ID, tx.Commit()
}

type resultRow struct {
	Seq        int             `db:"seq"`
	QualityID  string          `db:"quality_id"`
	Material   string          `db:"material"`
	MeanEnergy sql.NullFloat64 `db:"mean_energy_kev"`
	HVL1       sql.NullFloat64 `db:"hvl1_mm"`
	HVL2       sql.NullFloat64 `db:"hvl2_mm"`
	MeanHK     sql.NullFloat64 `db:"mean_hk"`
	Error      string          `db:"error"`
}

type deviationRow struct {
	Seq        int             `db:"seq"`
	Source     string          `db:"source"`
	MeanEnergy sql.NullFloat64 `db:"mean_energy_pct"`
	HVL1       sql.NullFloat64 `db:"hvl1_pct"`
	HVL2       sql.NullFloat64 `db:"hvl2_pct"`
}

// Run returns a stored run with its records in their original order.
func (db *DB) Run(id string) (Run, error) {
	var row runRow
	err := db.conn.Get(&row, "SELECT id, created_at, config, 0 AS count FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	info, err := row.info()
	if err != nil {
		return Run{}, err
	}

	recs, err := db.Records(id)
	if err != nil {
		return Run{}, err
	}
	return Run{ID: info.ID, Created: info.Created, Config: info.Config, Records: recs}, nil
}

// Records returns the records of a run in their original order.
func (db *DB) Records(runID string) ([]report.Record, error) {
	var rows []resultRow
	if err := db.conn.Select(&rows,
		`SELECT seq, quality_id, material, mean_energy_kev, hvl1_mm, hvl2_mm, mean_hk, error
		 FROM results WHERE run_id = ? ORDER BY seq`, runID); err != nil {
		return nil, err
	}
	var devs []deviationRow
	if err := db.conn.Select(&devs,
		`SELECT seq, source, mean_energy_pct, hvl1_pct, hvl2_pct
		 FROM deviations WHERE run_id = ? ORDER BY seq, source`, runID); err != nil {
		return nil, err
	}

	out := make([]report.Record, len(rows))
	bySeq := make(map[int]int, len(rows))
	for i, r := range rows {
		bySeq[r.Seq] = i
		out[i] = report.Record{
			QualityID:  r.QualityID,
			Material:   r.Material,
			MeanEnergy: value(r.MeanEnergy),
			HVL1:       value(r.HVL1),
			HVL2:       value(r.HVL2),
			MeanHK:     value(r.MeanHK),
			Error:      r.Error,
		}
	}
	for _, d := range devs {
		i, ok := bySeq[d.Seq]
		if !ok {
			continue
		}
		if out[i].Deviations == nil {
			out[i].Deviations = map[string]compare.Deviations{}
		}
		out[i].Deviations[d.Source] = compare.Deviations{
			MeanEnergy: value(d.MeanEnergy),
			HVL1:       value(d.HVL1),
			HVL2:       value(d.HVL2),
		}
	}
	return out, nil
}

// Runs lists stored runs, newest first. limit <= 0 lists all of them.
func (db *DB) Runs(limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []runRow
	err := db.conn.Select(&rows,
		`SELECT r.id, r.created_at, r.config, COUNT(s.seq) AS count
		 FROM runs r LEFT JOIN results s ON s.run_id = r.id
		 GROUP BY r.id ORDER BY r.created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	runs := make([]RunInfo, 0, len(rows))
	for _, r := range rows {
		info, err := r.info()
		if err != nil {
			return nil, err
		}
		runs = append(runs, info)
	}
	return runs, nil
}

func (r runRow) info() (RunInfo, error) {
	t, err := time.Parse(_timeFormat, r.Created)
	if err != nil {
		return RunInfo{}, fmt.Errorf("run %s: created_at: %w", r.ID, err)
	}
	return RunInfo{ID: r.ID, Created: t, Config: r.Config, Count: r.Count}, nil
}
