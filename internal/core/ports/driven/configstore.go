package driven

// ConfigStore holds the settings file as a flat map of dotted keys that
// mirror its TOML tables, e.g. "vault.root" or "archive.s3.bucket".
// Values keep the type the file decoded them to; the settings service
// coerces them.
type ConfigStore interface {
	// Lookup returns the value under key and whether it is set.
	Lookup(key string) (any, bool)

	// Set stores value under key and writes the file.
	Set(key string, value any) error

	// Unset removes key and writes the file. Removing a missing key is
	// not an error.
	Unset(key string) error

	// Keys lists the stored keys in sorted order.
	Keys() []string

	// Reload rereads the file, dropping unsaved state.
	Reload() error

	// Path locates the file.
	Path() string
}
