package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// History Errors (H001-H099)
	// ============================================

	"H001": {
		Category: CategoryHistory,
		Message:  "Invalid history capacity",
		Detail:   "A history store must be able to hold at least one value. Capacity must be 1 or greater.",
		DocURL:   "https://vango.dev/docs/errors/H001",
	},
	"H002": {
		Category: CategoryHistory,
		Message:  "Initial value factory failed",
		Detail:   "The factory passed to NewFunc returned an error, so no store was created.",
		DocURL:   "https://vango.dev/docs/errors/H002",
	},

	// ============================================
	// Config Errors (H100-H199)
	// ============================================

	"H100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No history.json was found in the given directory.",
		DocURL:   "https://vango.dev/docs/errors/H100",
	},
	"H101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be read or contains invalid values.",
		DocURL:   "https://vango.dev/docs/errors/H101",
	},

	// ============================================
	// Server Errors (H200-H299)
	// ============================================

	"H200": {
		Category: CategoryServer,
		Message:  "History not found",
		Detail:   "No history with this name exists.",
		DocURL:   "https://vango.dev/docs/errors/H200",
	},
	"H201": {
		Category: CategoryValidation,
		Message:  "Bad request",
		Detail:   "The request body or path parameters could not be parsed.",
		DocURL:   "https://vango.dev/docs/errors/H201",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
