package dedup

// ConfigurationError reports an invalid run configuration.  It is
// detected eagerly, before any input is touched.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "configuration error: " + e.Msg }

// InputError reports a missing, unreadable, or structurally empty
// input artifact.
type InputError struct {
	Msg string
	Err error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return "input error: " + e.Msg + ": " + e.Err.Error()
	}
	return "input error: " + e.Msg
}

func (e *InputError) Unwrap() error { return e.Err }

// ProcessingError reports input that had content but yielded zero
// deduplicated clusters across the whole run, as opposed to input
// that is merely sparse.
type ProcessingError struct {
	Msg string
}

func (e *ProcessingError) Error() string { return "processing error: " + e.Msg }
