package config

// Watcher defines the interface for configuration watching.
// It allows components to read the current configuration and subscribe
// to reload notifications without knowing how reloads are detected.
type Watcher interface {
	// GetCurrentConfig returns the current configuration
	GetCurrentConfig() *Config

	// Subscribe returns a channel that receives new configurations
	Subscribe() <-chan *Config

	// Close stops the watcher and releases its resources
	Close() error
}
