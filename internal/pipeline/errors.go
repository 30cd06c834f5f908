package pipeline

import "errors"

var (
	// ErrExtraction means the upload produced no usable text.
	ErrExtraction = errors.New("no extractable text")
	// ErrResourceUnavailable means the summarization server could not be
	// reached when the run was about to start.
	ErrResourceUnavailable = errors.New("summarization server unavailable")
	// ErrRunInProgress rejects a trigger while another run is active.
	ErrRunInProgress = errors.New("a run is already in progress")
	// ErrStopped rejects a trigger after the pipeline has been stopped.
	ErrStopped = errors.New("pipeline stopped")
)
