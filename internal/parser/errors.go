package parser

import "fmt"

// InvalidBeatmapError is returned for documents that cannot be played. The
// caller is expected to keep whatever beatmap it had before.
type InvalidBeatmapError struct {
	Reason string
	Err    error
}

func (e *InvalidBeatmapError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid beatmap: %s: %v", e.Reason, e.Err)
	}
	return "invalid beatmap: " + e.Reason
}

func (e *InvalidBeatmapError) Unwrap() error {
	return e.Err
}
