package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/supreme-sprinklers/backflow-cli/internal/extract"
	"github.com/supreme-sprinklers/backflow-cli/internal/pdfform"
	"github.com/supreme-sprinklers/backflow-cli/internal/render"
	"github.com/supreme-sprinklers/backflow-cli/internal/store"
	"github.com/supreme-sprinklers/backflow-cli/pkg/anthropic"
)

func initStore(ctx context.Context) (*store.SQLiteStore, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func initExtractor() (*extract.Extractor, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic.key is not configured")
	}
	return extract.New(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model), nil
}

func initRenderer() *render.Renderer {
	ttl := time.Duration(cfg.Template.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = render.DefaultTemplateTTL
	}
	cache := render.NewTemplateCache(cfg.Template.Source, ttl)
	return render.NewRenderer(cache, pdfform.New())
}
