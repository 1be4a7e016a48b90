package pipeline

// BuildStatus represents the progress of a site build.
type BuildStatus struct {
	Stage  string // "waiting", "pages", "assets", "done", "error"
	Total  int
	Done   int
	Errors int
}

// PageError wraps a failure to write a single page so callers can tell
// which route broke.
type PageError struct {
	Route string
	Err   error
}

func (e *PageError) Error() string { return e.Route + ": " + e.Err.Error() }
func (e *PageError) Unwrap() error { return e.Err }
