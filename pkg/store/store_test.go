package store

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/beamquality/pkg/compare"
	"github.com/ja7ad/beamquality/pkg/report"
)

func open(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func records() []report.Record {
	nan := math.NaN()
	ok := report.Record{
		QualityID: "N60", Material: "Cu", MeanEnergy: 47.9, HVL1: 0.24, HVL2: 0.26, MeanHK: nan,
		Deviations: map[string]compare.Deviations{
			"iso":    {MeanEnergy: 0.5, HVL1: -1.25, HVL2: nan},
			"spekpy": {MeanEnergy: 2, HVL1: 3, HVL2: 4},
		},
	}
	return []report.Record{ok, report.Failed("N80", errors.New("boom"))}
}

func TestSaveRun_RoundTrip(t *testing.T) {
	db := open(t)
	created := time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC)

	id, err := db.SaveRun(Run{Created: created, Config: "iso.yaml", Records: records()})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	run, err := db.Run(id)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.True(t, created.Equal(run.Created))
	assert.Equal(t, "iso.yaml", run.Config)
	assert.Empty(t, cmp.Diff(records(), run.Records, cmpopts.EquateNaNs(), cmpopts.EquateEmpty()))
}

func TestSaveRun_KeepsGivenID(t *testing.T) {
	db := open(t)
	id, err := db.SaveRun(Run{ID: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)

	recs, err := db.Records("fixed")
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = db.SaveRun(Run{ID: "fixed"})
	assert.Error(t, err, "duplicate id")
}

func TestRun_NotFound(t *testing.T) {
	_, err := open(t).Run("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRuns_NewestFirst(t *testing.T) {
	db := open(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := db.SaveRun(Run{ID: "old", Created: base, Records: records()})
	require.NoError(t, err)
	_, err = db.SaveRun(Run{ID: "new", Created: base.Add(500 * time.Millisecond)})
	require.NoError(t, err)

	runs, err := db.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, 0, runs[0].Count)
	assert.Equal(t, "old", runs[1].ID)
	assert.Equal(t, 2, runs[1].Count)

	runs, err = db.Runs(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := Open(path)
	require.NoError(t, err)
	id, err := db.SaveRun(Run{Records: records()})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	recs, err := db.Records(id)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}
