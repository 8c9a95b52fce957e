// Package sink converts computed column geometry into output artifacts:
// SVG and PNG images via the plotting layer, and a JSON interchange
// document for caching, persistence, and external tools.
package sink
