package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/beamquality/pkg/beamquality"
	"github.com/ja7ad/beamquality/pkg/config"
	"github.com/ja7ad/beamquality/pkg/hvl"
)

func TestCollect_ConfigOrderAndReferences(t *testing.T) {
	cfg := &config.Config{Qualities: []config.Quality{{ID: "N30"}, {ID: "N40"}, {ID: "N60"}, {ID: "N80"}}}
	outcomes := []beamquality.Outcome{
		{QualityID: "N60", Err: errors.New("second hvl: no convergence")},
		{QualityID: "N30", Result: beamquality.Result{
			QualityID: "N30", Material: "Al", MeanEnergy: 24,
			HVL: hvl.Result{First: hvl.Layer{Thickness: 0.115}, Second: hvl.Layer{Thickness: 0.17}},
		}},
	}
	failures := []config.Failure{{QualityID: "N40", Material: "Al", Err: errors.New("missing spectrum")}}
	refs := config.ReferenceSet{"N30": {"iso": {MeanEnergy: 24, HVL1: 1.15, HVL2: 1.7}}}

	recs := collect(cfg, outcomes, failures, refs)
	require.Len(t, recs, 3, "N80 was never evaluated")

	assert.Equal(t, "N30", recs[0].QualityID)
	assert.InDelta(t, 1.15, recs[0].HVL1, 1e-12)
	iso := recs[0].Deviations["iso"]
	assert.InDelta(t, 0, iso.MeanEnergy, 1e-9)
	assert.InDelta(t, 0, iso.HVL1, 1e-9)
	assert.InDelta(t, 0, iso.HVL2, 1e-9)

	assert.Equal(t, "N40", recs[1].QualityID)
	assert.Equal(t, "Al", recs[1].Material)
	assert.Equal(t, "missing spectrum", recs[1].Error)

	assert.Equal(t, "N60", recs[2].QualityID)
	assert.Contains(t, recs[2].Error, "no convergence")
	assert.Nil(t, recs[2].Deviations)
}

func TestSetupLogging(t *testing.T) {
	assert.NoError(t, setupLogging("debug"))
	assert.NoError(t, setupLogging("WARN"))
	assert.Error(t, setupLogging("loud"))
}
