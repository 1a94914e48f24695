package sim

import (
	"encoding/json"
	"errors"
	"os"

	"radar-fusion-sim/internal/telemetry"
)

// FileWriter writes rows to JSONL files, one file per stream.
type FileWriter struct {
	files    []*os.File
	trackEnc *json.Encoder
	nodeEnc  *json.Encoder
	eventEnc *json.Encoder
	stateEnc *json.Encoder
}

// FilePaths names the per-stream log files. Empty paths skip that stream.
type FilePaths struct {
	Tracks string
	Nodes  string
	Events string
	State  string
}

// PathsFor derives the per-stream paths from a base log path: the base file
// holds fused tracks and the other streams get a suffix.
func PathsFor(base string) FilePaths {
	return FilePaths{
		Tracks: base,
		Nodes:  base + ".nodes",
		Events: base + ".events",
		State:  base + ".state",
	}
}

// NewFileWriter creates the files named in p.
func NewFileWriter(p FilePaths) (*FileWriter, error) {
	fw := &FileWriter{}
	open := func(path string) (*json.Encoder, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		fw.files = append(fw.files, f)
		return json.NewEncoder(f), nil
	}
	var err error
	if fw.trackEnc, err = open(p.Tracks); err != nil {
		fw.Close()
		return nil, err
	}
	if fw.nodeEnc, err = open(p.Nodes); err != nil {
		fw.Close()
		return nil, err
	}
	if fw.eventEnc, err = open(p.Events); err != nil {
		fw.Close()
		return nil, err
	}
	if fw.stateEnc, err = open(p.State); err != nil {
		fw.Close()
		return nil, err
	}
	return fw, nil
}

// Writers returns the streams this FileWriter records.
func (f *FileWriter) Writers() Writers {
	var w Writers
	if f.trackEnc != nil {
		w.Tracks = f
	}
	if f.nodeEnc != nil {
		w.Nodes = f
	}
	if f.eventEnc != nil {
		w.Events = f
	}
	if f.stateEnc != nil {
		w.State = f
	}
	return w
}

// WriteTrack logs a fused track row, if enabled.
func (f *FileWriter) WriteTrack(row telemetry.FusedTrackRow) error {
	if f.trackEnc == nil {
		return nil
	}
	return f.trackEnc.Encode(row)
}

// WriteNode logs a node status row, if enabled.
func (f *FileWriter) WriteNode(row telemetry.NodeStatusRow) error {
	if f.nodeEnc == nil {
		return nil
	}
	return f.nodeEnc.Encode(row)
}

// WriteEvent logs an event, if enabled.
func (f *FileWriter) WriteEvent(row telemetry.EventRow) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(row)
}

// WriteState logs a tick state row, if enabled.
func (f *FileWriter) WriteState(row telemetry.TickStateRow) error {
	if f.stateEnc == nil {
		return nil
	}
	return f.stateEnc.Encode(row)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var errs []error
	for _, file := range f.files {
		errs = append(errs, file.Close())
	}
	f.files = nil
	return errors.Join(errs...)
}
