package artifact

import "fmt"

// ConfigLoadError reports a missing, unreadable or unparseable config.json.
type ConfigLoadError struct {
	Path string
	Err  error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("config %s: load failed: %v", e.Path, e.Err)
}

func (e *ConfigLoadError) Unwrap() error { return e.Err }

// ConfigSaveError reports an I/O failure while persisting config.json.
type ConfigSaveError struct {
	Path string
	Err  error
}

func (e *ConfigSaveError) Error() string {
	return fmt.Sprintf("config %s: save failed: %v", e.Path, e.Err)
}

func (e *ConfigSaveError) Unwrap() error { return e.Err }

// ModelLoadError reports a missing or corrupt model or checkpoint, including
// stored parameters whose shape disagrees with the configured topology.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("model %s: load failed: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// ModelSaveError reports an I/O failure while writing a model or checkpoint.
type ModelSaveError struct {
	Path string
	Err  error
}

func (e *ModelSaveError) Error() string {
	return fmt.Sprintf("model %s: save failed: %v", e.Path, e.Err)
}

func (e *ModelSaveError) Unwrap() error { return e.Err }

// DirectoryError reports an artifact directory that cannot be created, wiped or listed.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }
