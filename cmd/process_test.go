package main

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supreme-sprinklers/backflow-cli/internal/capture"
	"github.com/supreme-sprinklers/backflow-cli/internal/extract"
	"github.com/supreme-sprinklers/backflow-cli/internal/tracking"
)

func TestProcessFramePersistsZeroEditSession(t *testing.T) {
	st := newMemStore()
	extractor := extract.New(&fakeLLM{reply: `{
		"address": "9 Isaac Court",
		"deviceType": "RPZ",
		"deviceSize": "1\"",
		"serialNumber": "SN-4411",
		"test1A": "5.2 PSI",
		"test1B": "3.1 PSI",
		"test2": "NF",
		"test3": "2.0 PSI",
		"city": "Lakewood NJ",
		"zip": "08701"
	}`}, "claude-haiku-4-5-20251001")

	img, err := capture.FromDataURI(testImageURI(t))
	require.NoError(t, err)

	record, err := processFrame(context.Background(), extractor, tracking.NewTracker(st), img)
	require.NoError(t, err)
	assert.Equal(t, "9 Isaac Court", record.Address)
	assert.True(t, record.SecondTestNF)

	// An uncorrected run still lands in the telemetry as a clean session.
	require.Len(t, st.sessions, 1)
	assert.NotEmpty(t, st.sessions[0].SessionID)
	assert.Empty(t, st.sessions[0].Edits)
}

func TestProcessFrameExtractionFailure(t *testing.T) {
	st := newMemStore()
	extractor := extract.New(&fakeLLM{err: eris.New("api down")}, "claude-haiku-4-5-20251001")

	img, err := capture.FromDataURI(testImageURI(t))
	require.NoError(t, err)

	_, err = processFrame(context.Background(), extractor, tracking.NewTracker(st), img)
	require.Error(t, err)
	assert.Empty(t, st.sessions)
}
