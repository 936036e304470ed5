package telemetry

import (
	"context"
	"encoding/json"
	"time"
)

// Data is a struct type that holds all telemetry data of an analysis run
type Data struct {
	// AnalysisDuration is the time it took to analyze the source
	AnalysisDuration time.Duration

	// BytesRead is the number of bytes pulled through the cursor
	BytesRead int64

	// EntriesFound is the number of file entries decoded from the source
	EntriesFound int64

	// Format is the detected archive format
	Format string

	// Fragment indicates that the source was a partial archive
	Fragment bool

	// LastError is the last error during analysis
	LastError error

	// SourceSize is the size of the analyzed source
	SourceSize int64
}

// Hook is a function pointer that is called after a finished analysis
// with the collected [Data].
type Hook func(ctx context.Context, d *Data)

// String returns a string representation of [Data].
func (d Data) String() string {
	b, _ := json.Marshal(d)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (d Data) MarshalJSON() ([]byte, error) {
	var lastError string
	if d.LastError != nil {
		lastError = d.LastError.Error()
	}

	return json.Marshal(struct {
		AnalysisDuration int64  `json:"analysis_duration"`
		BytesRead        int64  `json:"bytes_read"`
		EntriesFound     int64  `json:"entries_found"`
		Format           string `json:"format"`
		Fragment         bool   `json:"fragment"`
		LastError        string `json:"last_error"`
		SourceSize       int64  `json:"source_size"`
	}{
		AnalysisDuration: int64(d.AnalysisDuration),
		BytesRead:        d.BytesRead,
		EntriesFound:     d.EntriesFound,
		Format:           d.Format,
		Fragment:         d.Fragment,
		LastError:        lastError,
		SourceSize:       d.SourceSize,
	})
}
