// Package pdfform adapts pdfcpu's AcroForm filling to the renderer's Engine
// interface. Each field is applied as its own fill pass so that one missing
// or mismatched field name leaves the document untouched instead of failing
// the whole render.
package pdfform

import (
	"bytes"
	"encoding/json"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rotisserie/eris"

	"github.com/supreme-sprinklers/backflow-cli/internal/render"
)

// Engine opens fillable PDF templates via pdfcpu.
type Engine struct {
	conf *pdfmodel.Configuration
}

// New creates a PDF form engine. Object streams are enabled so the saved
// document uses pdfcpu's compact serialization.
func New() *Engine {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	conf.WriteObjectStream = true
	conf.WriteXRefStream = true
	return &Engine{conf: conf}
}

// Open validates the template structurally and returns an editable form
// over it. A corrupt or unreadable template fails here, before any field
// operations.
func (e *Engine) Open(template []byte) (render.Form, error) {
	if _, err := api.PageCount(bytes.NewReader(template), e.conf); err != nil {
		return nil, eris.Wrap(err, "pdfform: invalid template")
	}
	return &form{conf: e.conf, current: template}, nil
}

// form holds the working document bytes between field operations.
type form struct {
	conf    *pdfmodel.Configuration
	current []byte
}

// Fill-payload shapes matching pdfcpu's form JSON.
type fillPayload struct {
	Forms []fillEntry `json:"forms"`
}

type fillEntry struct {
	TextFields []textField `json:"textfield,omitempty"`
	CheckBoxes []checkBox  `json:"checkbox,omitempty"`
}

type textField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type checkBox struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

func (f *form) SetText(field, value string) error {
	payload := fillPayload{Forms: []fillEntry{{
		TextFields: []textField{{Name: field, Value: value}},
	}}}
	return f.fill(payload, field)
}

func (f *form) Check(field string) error {
	payload := fillPayload{Forms: []fillEntry{{
		CheckBoxes: []checkBox{{Name: field, Value: true}},
	}}}
	return f.fill(payload, field)
}

// fill applies one form-data payload. On any failure the working bytes are
// left as they were, so the caller can skip the field and continue.
func (f *form) fill(payload fillPayload, field string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrapf(err, "pdfform: marshal fill data for %q", field)
	}

	var out bytes.Buffer
	if err := api.FillForm(bytes.NewReader(f.current), bytes.NewReader(data), &out, f.conf); err != nil {
		return eris.Wrapf(err, "pdfform: fill %q", field)
	}

	f.current = out.Bytes()
	return nil
}

func (f *form) Save() ([]byte, error) {
	return f.current, nil
}
