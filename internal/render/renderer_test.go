package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supreme-sprinklers/backflow-cli/internal/model"
)

// fakeForm records applied field operations.
type fakeForm struct {
	texts      map[string]string
	checked    []string
	missing    map[string]bool
	saveErr    error
	saveOutput []byte
}

func (f *fakeForm) SetText(field, value string) error {
	if f.missing[field] {
		return eris.Errorf("no field %q", field)
	}
	f.texts[field] = value
	return nil
}

func (f *fakeForm) Check(field string) error {
	if f.missing[field] {
		return eris.Errorf("no checkbox %q", field)
	}
	f.checked = append(f.checked, field)
	return nil
}

func (f *fakeForm) Save() ([]byte, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return f.saveOutput, nil
}

type fakeEngine struct {
	form    *fakeForm
	openErr error
}

func (e *fakeEngine) Open(template []byte) (Form, error) {
	if e.openErr != nil {
		return nil, e.openErr
	}
	return e.form, nil
}

func newFakeForm() *fakeForm {
	return &fakeForm{
		texts:      map[string]string{},
		missing:    map[string]bool{},
		saveOutput: []byte("%PDF-rendered"),
	}
}

func fileCache(t *testing.T) *TemplateCache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-template"), 0o644))
	return NewTemplateCache(path, time.Hour)
}

func fullRecord() model.InspectionRecord {
	return model.InspectionRecord{
		Address:      "9 Izak Ct",
		City:         "Lakewood, NJ",
		Zip:          "08701",
		DeviceType:   "Wilkins 720A",
		DeviceSize:   `1"`,
		SerialNumber: "T644548",
		Test1A:       "1.8",
		Test1B:       "51 PSI",
		Test3:        "2.6",
		Notes:        "annual test",
		SecondTestNF: true,
	}
}

func TestRenderFillsAllMappedFields(t *testing.T) {
	form := newFakeForm()
	r := NewRenderer(fileCache(t), &fakeEngine{form: form})
	r.nowFunc = func() time.Time {
		return time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	}

	doc, err := r.Render(context.Background(), fullRecord())
	require.NoError(t, err)
	defer doc.Release()

	assert.Equal(t, "9 Izak Ct", form.texts["Device Address and Location Line 1*"])
	assert.Equal(t, "Lakewood, NJ", form.texts["Device Address and Location Line 2 City*"])
	assert.Equal(t, "08701", form.texts["Device Address and Location Line 2 Zip*"])
	assert.Equal(t, "T644548", form.texts["Serial No.*"])
	assert.Equal(t, "1.8", form.texts["PVB Check Valve DP PSID*"])
	assert.Equal(t, "51 PSI", form.texts["Line Pressure PSI*"])
	assert.Equal(t, "2.6", form.texts["PVB Air Inlet Opened At*"])
	assert.Equal(t, "annual test", form.texts["Notes"])

	assert.Equal(t, "03/05/2026", form.texts["Date"])
	assert.Equal(t, "2:30 PM", form.texts["Time"])
	assert.Equal(t, []string{"Test 2 NF"}, form.checked)
}

func TestRenderSkipsEmptyFields(t *testing.T) {
	form := newFakeForm()
	r := NewRenderer(fileCache(t), &fakeEngine{form: form})

	record := fullRecord()
	record.Test1B = ""
	record.SecondTestNF = false

	doc, err := r.Render(context.Background(), record)
	require.NoError(t, err)
	defer doc.Release()

	_, set := form.texts["Line Pressure PSI*"]
	assert.False(t, set, "empty record values leave the form field untouched")
	assert.Empty(t, form.checked)
}

func TestRenderToleratesMissingFormFields(t *testing.T) {
	form := newFakeForm()
	form.missing["Notes"] = true
	form.missing["Test 2 NF"] = true
	r := NewRenderer(fileCache(t), &fakeEngine{form: form})

	doc, err := r.Render(context.Background(), fullRecord())
	require.NoError(t, err, "field-name drift must not abort the render")
	defer doc.Release()
	assert.Empty(t, form.checked)
}

func TestRenderEngineRejectsTemplate(t *testing.T) {
	r := NewRenderer(fileCache(t), &fakeEngine{openErr: eris.New("corrupt xref table")})
	_, err := r.Render(context.Background(), fullRecord())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrRender))
}

func TestRenderSerializationFailure(t *testing.T) {
	form := newFakeForm()
	form.saveErr = eris.New("compression error")
	r := NewRenderer(fileCache(t), &fakeEngine{form: form})

	_, err := r.Render(context.Background(), fullRecord())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrRender))
}

func TestRenderTemplateLoadFailure(t *testing.T) {
	cache := NewTemplateCache(filepath.Join(t.TempDir(), "missing.pdf"), time.Hour)
	r := NewRenderer(cache, &fakeEngine{form: newFakeForm()})

	_, err := r.Render(context.Background(), fullRecord())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrTemplateLoad))
}

func TestHandlesIndependentRelease(t *testing.T) {
	doc := NewRenderedDocument([]byte("%PDF-rendered"))

	doc.Preview.Release()
	_, err := doc.Preview.Bytes()
	assert.True(t, eris.Is(err, ErrHandleReleased))

	data, err := doc.Download.Bytes()
	require.NoError(t, err, "releasing one handle leaves the other valid")
	assert.Equal(t, []byte("%PDF-rendered"), data)

	doc.Download.Release()
	assert.False(t, doc.Outstanding())
}

func TestRenderRoundTripIndependentHandlePairs(t *testing.T) {
	r := NewRenderer(fileCache(t), &fakeEngine{form: newFakeForm()})
	ctx := context.Background()

	first, err := r.Render(ctx, fullRecord())
	require.NoError(t, err)
	first.Release()

	second, err := r.Render(ctx, fullRecord())
	require.NoError(t, err)
	defer second.Release()

	data, err := second.Preview.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-rendered"), data)
}

func TestHandleReleaseIdempotent(t *testing.T) {
	doc := NewRenderedDocument([]byte("x"))
	doc.Preview.Release()
	doc.Preview.Release()

	data, err := doc.Download.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestHandleWriteFile(t *testing.T) {
	doc := NewRenderedDocument([]byte("%PDF-rendered"))
	defer doc.Release()

	path := filepath.Join(t.TempDir(), "cert.pdf")
	require.NoError(t, doc.Download.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-rendered"), data)

	doc.Download.Release()
	assert.Error(t, doc.Download.WriteFile(path))
}
