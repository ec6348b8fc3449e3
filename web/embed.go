package web

import "embed"

// Templates embeds the business-document HTML templates. They use the
// logic-less token syntax consumed by internal/documents: {{path}} for
// substitution and {{#path}}...{{/path}} for conditional or repeated
// sections.
//
//go:embed templates/documents/*.html
var Templates embed.FS
