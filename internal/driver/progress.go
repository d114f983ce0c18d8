package driver

import "time"

// Stage describes a front-end phase as shown by progress sinks.
type Stage string

const (
	// StageLoad reads a file from disk.
	StageLoad Stage = "load"
	// StageParse lexes and parses a file.
	StageParse Stage = "parse"
	// StageResolve runs the fixpoint over a library.
	StageResolve Stage = "resolve"
	// StageCheck checks function and script bodies.
	StageCheck Stage = "check"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	// StatusCached marks work skipped thanks to a cache.
	StatusCached Status = "cached"
)

// Event reports progress for a file or library (or for the whole run when
// File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Load and parse events arrive from
// several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) { f(evt) }

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
