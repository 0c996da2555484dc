package service

import (
	"smarthire/internal/config"
	"smarthire/internal/cv"
	"smarthire/internal/llm"
	httpclient "smarthire/pkg/http"
)

// NewPipeline builds the extraction pipeline from configuration. The returned
// materializer shares the parser's fetcher so archiving sees the same bytes.
func NewPipeline(cfg *config.Config) (*cv.Parser, *cv.Materializer) {
	materializer := cv.NewMaterializer(httpclient.NewClient(cfg.FetchTimeout))
	extractor := cv.NewTextExtractor(cv.DocconvConverter{}, cv.NewPopplerOCR(), cfg.OCRDPI)

	var enricher cv.Enricher
	if cfg.EnrichmentEnabled() {
		enricher = llm.NewService(cfg)
	}
	merger := cv.NewEnrichmentMerger(enricher, cfg.EnrichmentMaxChars)

	parser := cv.NewParser(materializer, extractor, cv.ProseAnalyzer{}, merger, cv.ParserOptions{})
	return parser, materializer
}
