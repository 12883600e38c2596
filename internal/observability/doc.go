// Package observability owns the process wide zap logger.
//
// Console output goes to stderr, colorized or as JSON. When a log file is
// configured a second JSON core writes to it through lumberjack rotation.
// Initialize also redirects the standard library logger into zap.
package observability
