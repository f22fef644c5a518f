package render

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/supreme-sprinklers/backflow-cli/internal/model"
)

// ErrRender is returned when the document engine rejects the template or
// serialization fails. Per-field lookup failures never surface here.
var ErrRender = eris.New("render failed")

// Engine opens a fillable template. Implemented by internal/pdfform; faked
// in tests.
type Engine interface {
	Open(template []byte) (Form, error)
}

// Form is an editable document model. SetText and Check failures for
// individual fields are recoverable; Save failures are not.
type Form interface {
	SetText(field, value string) error
	Check(field string) error
	Save() ([]byte, error)
}

// Renderer fills the certificate template from a verified record and hands
// back a preview/download pair over the rendered bytes.
type Renderer struct {
	cache  *TemplateCache
	engine Engine

	last *RenderedDocument

	// nowFunc allows test injection of the certification timestamp.
	nowFunc func() time.Time
}

// NewRenderer creates a Renderer over the given template cache and engine.
func NewRenderer(cache *TemplateCache, engine Engine) *Renderer {
	return &Renderer{cache: cache, engine: engine, nowFunc: time.Now}
}

// Render fills the template with the record and returns a new document.
// Field-name drift in the template degrades gracefully: a missing text field
// or checkbox is logged and skipped. Template load and serialization
// failures abort the render. The caller owns releasing the returned handles.
func (r *Renderer) Render(ctx context.Context, record model.InspectionRecord) (*RenderedDocument, error) {
	if r.last != nil && r.last.Outstanding() {
		zap.L().Warn("rendering with unreleased document handles outstanding")
	}

	template, err := r.cache.Load(ctx)
	if err != nil {
		return nil, err
	}

	form, err := r.engine.Open(template)
	if err != nil {
		return nil, eris.Wrapf(ErrRender, "render: open template: %v", err)
	}

	for field, formField := range fieldMapping {
		value := record.Get(field)
		if value == "" {
			continue
		}
		if err := form.SetText(formField, value); err != nil {
			zap.L().Warn("skipping unmapped form field",
				zap.String("field", formField),
				zap.Error(err),
			)
		}
	}

	// Certification timestamp, independent of user input.
	now := r.nowFunc()
	for name, value := range map[string]string{
		dateFieldName: formatCertDate(now),
		timeFieldName: formatCertTime(now),
	} {
		if err := form.SetText(name, value); err != nil {
			zap.L().Warn("skipping missing timestamp field",
				zap.String("field", name),
				zap.Error(err),
			)
		}
	}

	if record.SecondTestNF {
		if err := form.Check(nfCheckboxName); err != nil {
			zap.L().Warn("skipping missing NF checkbox", zap.Error(err))
		}
	}

	data, err := form.Save()
	if err != nil {
		return nil, eris.Wrapf(ErrRender, "render: serialize: %v", err)
	}

	doc := NewRenderedDocument(data)
	r.last = doc
	zap.L().Info("certificate rendered", zap.Int("bytes", len(data)))
	return doc, nil
}
