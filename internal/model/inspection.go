package model

import "regexp"

// Field names for InspectionRecord, used as keys in extraction output,
// edit tracking baselines, and the certificate field mapping.
const (
	FieldAddress      = "address"
	FieldCity         = "city"
	FieldZip          = "zip"
	FieldDeviceType   = "deviceType"
	FieldDeviceSize   = "deviceSize"
	FieldSerialNumber = "serialNumber"
	FieldTest1A       = "test1A"
	FieldTest1B       = "test1B"
	FieldTest3        = "test3"
	FieldNotes        = "notes"
	FieldSecondTestNF = "secondTestNF"
)

// TextFieldNames lists every string-valued record field in canonical order.
var TextFieldNames = []string{
	FieldAddress,
	FieldCity,
	FieldZip,
	FieldDeviceType,
	FieldDeviceSize,
	FieldSerialNumber,
	FieldTest1A,
	FieldTest1B,
	FieldTest3,
	FieldNotes,
}

// RequiredFields must be non-empty before a record is rendered.
var RequiredFields = []string{
	FieldAddress,
	FieldDeviceType,
	FieldDeviceSize,
	FieldSerialNumber,
}

// testValuePattern matches a numeric test reading, optionally with a PSI unit.
var testValuePattern = regexp.MustCompile(`^\d+(\.\d+)?(\s*PSI)?$`)

// InspectionRecord is the in-progress structured inspection data for one
// session. It carries no identity; it is mutated in place by extraction
// output and by user edits, and discarded when the session ends.
type InspectionRecord struct {
	Address      string `json:"address"`
	City         string `json:"city"`
	Zip          string `json:"zip"`
	DeviceType   string `json:"deviceType"`
	DeviceSize   string `json:"deviceSize"`
	SerialNumber string `json:"serialNumber"`
	Test1A       string `json:"test1A"`
	Test1B       string `json:"test1B"`
	Test3        string `json:"test3"`
	Notes        string `json:"notes"`
	SecondTestNF bool   `json:"secondTestNF"`
}

// ExtractedFields is the subset of record fields supplied by automated
// extraction. Unset fields resolve to the empty string.
type ExtractedFields struct {
	Address      string
	City         string
	Zip          string
	DeviceType   string
	DeviceSize   string
	SerialNumber string
	Test1A       string
	Test1B       string
	Test3        string
	Notes        string
	SecondTestNF bool
}

// Fields returns the extracted text values keyed by canonical field name.
// This is the baseline shape consumed by the edit tracker.
func (e ExtractedFields) Fields() map[string]string {
	return map[string]string{
		FieldAddress:      e.Address,
		FieldCity:         e.City,
		FieldZip:          e.Zip,
		FieldDeviceType:   e.DeviceType,
		FieldDeviceSize:   e.DeviceSize,
		FieldSerialNumber: e.SerialNumber,
		FieldTest1A:       e.Test1A,
		FieldTest1B:       e.Test1B,
		FieldTest3:        e.Test3,
		FieldNotes:        e.Notes,
	}
}

// IsEmpty reports whether no field carries a non-empty value. An all-empty
// extraction is treated as a failed extraction, not a valid answer.
func (e ExtractedFields) IsEmpty() bool {
	for _, v := range e.Fields() {
		if v != "" {
			return false
		}
	}
	return !e.SecondTestNF
}

// Apply merges extracted fields into the record and returns the result.
// Only non-empty extracted values overwrite; the NF flag always transfers.
func (r InspectionRecord) Apply(e ExtractedFields) InspectionRecord {
	for name, v := range e.Fields() {
		if v != "" {
			r.Set(name, v)
		}
	}
	r.SecondTestNF = e.SecondTestNF
	return r
}

// Get returns the value of the named text field, or "" for unknown names.
func (r InspectionRecord) Get(field string) string {
	switch field {
	case FieldAddress:
		return r.Address
	case FieldCity:
		return r.City
	case FieldZip:
		return r.Zip
	case FieldDeviceType:
		return r.DeviceType
	case FieldDeviceSize:
		return r.DeviceSize
	case FieldSerialNumber:
		return r.SerialNumber
	case FieldTest1A:
		return r.Test1A
	case FieldTest1B:
		return r.Test1B
	case FieldTest3:
		return r.Test3
	case FieldNotes:
		return r.Notes
	}
	return ""
}

// Set assigns the named text field. Unknown field names are ignored.
func (r *InspectionRecord) Set(field, value string) {
	switch field {
	case FieldAddress:
		r.Address = value
	case FieldCity:
		r.City = value
	case FieldZip:
		r.Zip = value
	case FieldDeviceType:
		r.DeviceType = value
	case FieldDeviceSize:
		r.DeviceSize = value
	case FieldSerialNumber:
		r.SerialNumber = value
	case FieldTest1A:
		r.Test1A = value
	case FieldTest1B:
		r.Test1B = value
	case FieldTest3:
		r.Test3 = value
	case FieldNotes:
		r.Notes = value
	}
}

// ValidationIssue describes one field that failed pre-render validation.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks required fields and test-value formats. A non-empty result
// means the record is not yet ready to certify.
func (r InspectionRecord) Validate() []ValidationIssue {
	var issues []ValidationIssue
	for _, f := range RequiredFields {
		if r.Get(f) == "" {
			issues = append(issues, ValidationIssue{Field: f, Message: "required"})
		}
	}
	for _, f := range []string{FieldTest1A, FieldTest1B, FieldTest3} {
		if v := r.Get(f); v != "" && !testValuePattern.MatchString(v) {
			issues = append(issues, ValidationIssue{Field: f, Message: "not a valid test reading"})
		}
	}
	return issues
}
