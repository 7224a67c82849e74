package reslib

// ProgressEvent reports progress during Flush and Extract.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the resource currently being processed, if applicable.
	Path string

	// BytesDone is the number of bytes written so far.
	BytesDone uint64

	// EntriesDone is the number of entries completed.
	EntriesDone int

	// EntriesTotal is the total number of entries.
	EntriesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

const (
	// StageCompressing indicates resources are being compressed and written.
	StageCompressing ProgressStage = iota

	// StageFinalizing indicates the header and index are being backpatched.
	StageFinalizing

	// StageExtracting indicates entries are being extracted.
	StageExtracting
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageCompressing:
		return "compressing"
	case StageFinalizing:
		return "finalizing"
	case StageExtracting:
		return "extracting"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates.
// Extract calls it from several goroutines; implementations must be safe for
// concurrent calls.
type ProgressFunc func(ProgressEvent)
