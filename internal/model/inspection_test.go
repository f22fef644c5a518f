package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOverwritesOnlyNonEmpty(t *testing.T) {
	r := InspectionRecord{Address: "old addr", Notes: "keep me"}
	next := r.Apply(ExtractedFields{
		Address:      "9 Izak Ct",
		SerialNumber: "T644548",
		SecondTestNF: true,
	})

	assert.Equal(t, "9 Izak Ct", next.Address)
	assert.Equal(t, "T644548", next.SerialNumber)
	assert.Equal(t, "keep me", next.Notes)
	assert.True(t, next.SecondTestNF)

	// The receiver is untouched.
	assert.Equal(t, "old addr", r.Address)
}

func TestGetSetRoundTrip(t *testing.T) {
	var r InspectionRecord
	for _, f := range TextFieldNames {
		r.Set(f, "v:"+f)
	}
	for _, f := range TextFieldNames {
		assert.Equal(t, "v:"+f, r.Get(f), f)
	}

	r.Set("bogus", "x")
	assert.Equal(t, "", r.Get("bogus"))
}

func TestExtractedFieldsIsEmpty(t *testing.T) {
	assert.True(t, ExtractedFields{}.IsEmpty())
	assert.False(t, ExtractedFields{Test3: "2.6"}.IsEmpty())
	assert.False(t, ExtractedFields{SecondTestNF: true}.IsEmpty())
}

func TestValidate(t *testing.T) {
	issues := InspectionRecord{}.Validate()
	assert.Len(t, issues, len(RequiredFields))

	r := InspectionRecord{
		Address:      "9 Izak Ct",
		DeviceType:   "Wilkins 720A",
		DeviceSize:   `1"`,
		SerialNumber: "T644548",
		Test1A:       "1.8",
		Test1B:       "51 PSI",
		Test3:        "2.6",
	}
	assert.Empty(t, r.Validate())

	r.Test1B = "fifty one"
	issues = r.Validate()
	assert.Len(t, issues, 1)
	assert.Equal(t, FieldTest1B, issues[0].Field)
}

func TestAggregateZeroSessions(t *testing.T) {
	stats := Aggregate(nil)
	assert.Equal(t, 0, stats.TotalSessions)
	assert.Equal(t, 0, stats.TotalEdits)
	assert.Equal(t, 0, stats.SessionsWithEdits)
	assert.Empty(t, stats.EditsByField)
	assert.Equal(t, float64(100), stats.Accuracy())
}

func TestAggregateAndAccuracy(t *testing.T) {
	sessions := []EditSession{
		{SessionID: "a", Edits: []EditEvent{
			{FieldName: FieldAddress},
			{FieldName: FieldAddress},
			{FieldName: FieldTest1A},
		}},
		{SessionID: "b"},
		{SessionID: "c", Edits: []EditEvent{{FieldName: FieldZip}}},
		{SessionID: "d"},
	}

	stats := Aggregate(sessions)
	assert.Equal(t, 4, stats.TotalSessions)
	assert.Equal(t, 4, stats.TotalEdits)
	assert.Equal(t, 2, stats.SessionsWithEdits)
	assert.Equal(t, 2, stats.EditsByField[FieldAddress])
	assert.Equal(t, 1, stats.EditsByField[FieldTest1A])
	assert.Equal(t, 1, stats.EditsByField[FieldZip])
	assert.InDelta(t, 50.0, stats.Accuracy(), 0.001)
}
