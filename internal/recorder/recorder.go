package recorder

import "KursPajak/internal/exporter"

// Recorder stores a finished export so it can be picked up after the run.
type Recorder interface {
	RecordExport(p *exporter.Payload) (string, error)
	Close() error
}
