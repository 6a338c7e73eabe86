package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Router Errors (P100-P119)
	// ============================================

	"P101": {
		Category:   CategoryRouter,
		Message:    "No allowed paths configured",
		Detail:     "Navigation requires the set of allowed paths. Configure must run before Navigate.",
		Suggestion: "Create the outlet (or call Router.Configure) before wiring navigation links",
	},
	"P102": {
		Category: CategoryRouter,
		Message:  "Invalid parameter schema",
		Detail:   "A declarative parameter schema could not be compiled or its default fails its own validator.",
	},

	// ============================================
	// Config Errors (P120-P139)
	// ============================================

	"P120": {
		Category: CategoryConfig,
		Message:  "Failed to read configuration",
	},
	"P121": {
		Category:   CategoryConfig,
		Message:    "Configuration not found",
		Suggestion: "Create pegel.json (or pegel.yaml) or pass --config",
	},
	"P122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},

	// ============================================
	// Source Errors (P140-P159)
	// ============================================

	"P140": {
		Category: CategorySource,
		Message:  "Station fetch failed",
		Detail:   "The remote station source did not return a usable response.",
	},
	"P141": {
		Category: CategorySource,
		Message:  "Station payload malformed",
		Detail:   "The station source returned data that is not a JSON array of stations.",
	},
	"P142": {
		Category: CategorySource,
		Message:  "Station not found",
	},
	"P143": {
		Category: CategorySource,
		Message:  "Invalid JSONPath",
	},

	// ============================================
	// Protocol Errors (P160-P179)
	// ============================================

	"P160": {
		Category: CategoryProtocol,
		Message:  "Malformed client message",
	},
	"P161": {
		Category: CategoryProtocol,
		Message:  "Unknown message type",
	},
	"P162": {
		Category:   CategoryProtocol,
		Message:    "Session not started",
		Suggestion: "Send a hello message with the current hash first",
	},

	// ============================================
	// CLI Errors (P180-P199)
	// ============================================

	"P180": {
		Category: CategoryCLI,
		Message:  "Invalid command arguments",
	},
}
