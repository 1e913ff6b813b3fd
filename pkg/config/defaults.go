package config

// Default values.
const (
	DefaultMaxFileSize = "2MB"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"

	maxFileSizeLimit = 1 << 30
)

// DefaultExtensions are the file extensions converted when walking directories.
var DefaultExtensions = []string{".js", ".jsx"}

// DefaultImportSuffixes select the imports whose paths gain an explicit
// extension when import paths are fixed.
var DefaultImportSuffixes = []string{"Component", "Directive", "Filter", "Service"}
