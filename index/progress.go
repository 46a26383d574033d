package index

// ProgressReporter receives height/tip updates during indexing, the Go
// analogue of the Rust updater's progress bar (spec §9 SUPPLEMENT).
// The zero value (nil) disables reporting.
type ProgressReporter interface {
	// Advance reports that height has just been indexed, with tip the
	// client's last-known chain height.
	Advance(height, tip uint64)
	// Finish is called once the loop exits, successfully or not.
	Finish()
}

type noopProgress struct{}

func (noopProgress) Advance(uint64, uint64) {}
func (noopProgress) Finish()                {}

// NoopProgress is a ProgressReporter that does nothing, used when the
// caller doesn't care about progress output.
var NoopProgress ProgressReporter = noopProgress{}
