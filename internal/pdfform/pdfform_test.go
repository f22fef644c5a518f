package pdfform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillPayloadShape(t *testing.T) {
	payload := fillPayload{Forms: []fillEntry{{
		TextFields: []textField{{Name: "Serial No.*", Value: "T644548"}},
		CheckBoxes: []checkBox{{Name: "Test 2 NF", Value: true}},
	}}}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	forms, ok := decoded["forms"].([]any)
	require.True(t, ok)
	require.Len(t, forms, 1)

	entry := forms[0].(map[string]any)
	assert.Contains(t, entry, "textfield")
	assert.Contains(t, entry, "checkbox")
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := New().Open([]byte("definitely not a pdf"))
	assert.Error(t, err)
}
