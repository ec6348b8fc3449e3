package documents

import "errors"

var (
	// ErrTemplateNotFound indicates the requested template name has no file.
	ErrTemplateNotFound = errors.New("documents: template not found")
	// ErrRender indicates a malformed template or a failed rendering pass.
	ErrRender = errors.New("documents: template render failed")
	// ErrPDFGeneration indicates the headless browser failed to produce a PDF.
	ErrPDFGeneration = errors.New("documents: pdf generation failed")
	// ErrUpstreamData indicates a company/customer/project lookup failed.
	ErrUpstreamData = errors.New("documents: upstream data unavailable")
)
