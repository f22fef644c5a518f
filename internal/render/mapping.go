package render

import (
	"time"

	"github.com/supreme-sprinklers/backflow-cli/internal/model"
)

// fieldMapping maps record fields to the named text fields of the NEWWA
// certificate form. Only fields with a direct textual slot appear here; the
// NF flag and the two certification timestamp fields are handled separately.
var fieldMapping = map[string]string{
	model.FieldAddress:      "Device Address and Location Line 1*",
	model.FieldCity:         "Device Address and Location Line 2 City*",
	model.FieldZip:          "Device Address and Location Line 2 Zip*",
	model.FieldSerialNumber: "Serial No.*",
	model.FieldTest1A:       "PVB Check Valve DP PSID*",
	model.FieldTest1B:       "Line Pressure PSI*",
	model.FieldTest3:        "PVB Air Inlet Opened At*",
	model.FieldNotes:        "Notes",
}

// Free-standing certificate fields.
const (
	dateFieldName  = "Date"
	timeFieldName  = "Time"
	nfCheckboxName = "Test 2 NF"
)

// formatCertDate renders the certification date as MM/DD/YYYY.
func formatCertDate(t time.Time) string {
	return t.Format("01/02/2006")
}

// formatCertTime renders the certification time as h:mm AM/PM.
func formatCertTime(t time.Time) string {
	return t.Format("3:04 PM")
}
