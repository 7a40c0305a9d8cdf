package recorder

import "KursPajak/internal/exporter"

// NoopRecorder discards exports; used when no output directory is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordExport(_ *exporter.Payload) (string, error) { return "", nil }
func (n *NoopRecorder) Close() error                                    { return nil }
