package render

import (
	"os"
	"sync"

	"github.com/rotisserie/eris"
)

// ErrHandleReleased is returned when reading through a released handle.
var ErrHandleReleased = eris.New("document handle released")

// blob is the shared rendered document, refcounted across its handles.
type blob struct {
	mu   sync.Mutex
	data []byte
	refs int
}

func (b *blob) acquire() *Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refs++
	return &Handle{blob: b}
}

func (b *blob) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refs > 0 {
		b.refs--
	}
	if b.refs == 0 {
		b.data = nil
	}
}

// Handle is one independently revocable reference to a rendered document.
// Releasing one handle leaves the other valid; the underlying bytes are
// freed once every handle is released.
type Handle struct {
	blob *blob

	mu       sync.Mutex
	released bool
}

// Bytes returns the rendered document, or ErrHandleReleased after Release.
func (h *Handle) Bytes() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, ErrHandleReleased
	}
	h.blob.mu.Lock()
	defer h.blob.mu.Unlock()
	return h.blob.data, nil
}

// WriteFile writes the document to path, e.g. for the manual-attachment
// download flow.
func (h *Handle) WriteFile(path string) error {
	data, err := h.Bytes()
	if err != nil {
		return err
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "render: write %s", path)
}

// Release revokes this handle. Idempotent.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.mu.Unlock()
	h.blob.release()
}

// Released reports whether this handle has been revoked.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// RenderedDocument holds the two handles produced by a render: one for
// in-page preview, one for user download. The caller must release both
// before requesting a new render and on record reset.
type RenderedDocument struct {
	Preview  *Handle
	Download *Handle
}

// Release revokes both handles.
func (d *RenderedDocument) Release() {
	d.Preview.Release()
	d.Download.Release()
}

// Outstanding reports whether any handle is still live.
func (d *RenderedDocument) Outstanding() bool {
	return !d.Preview.Released() || !d.Download.Released()
}

// NewRenderedDocument wraps rendered bytes in a fresh pair of handles.
func NewRenderedDocument(data []byte) *RenderedDocument {
	b := &blob{data: data}
	return &RenderedDocument{
		Preview:  b.acquire(),
		Download: b.acquire(),
	}
}
