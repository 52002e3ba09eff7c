package utils

import "io"

type flushableWriter interface {
	Flush() error
}

type flushingWriter struct {
	destination io.Writer
}

// NewFlushingWriter wraps destination so every write is flushed immediately
// when the destination supports flushing.
func NewFlushingWriter(destination io.Writer) io.Writer {
	return &flushingWriter{destination: destination}
}

// Write forwards data to the destination and flushes it when possible.
func (writer *flushingWriter) Write(data []byte) (int, error) {
	writtenBytes, writeError := writer.destination.Write(data)
	if writeError != nil {
		return writtenBytes, writeError
	}
	if destinationFlusher, supportsFlush := writer.destination.(flushableWriter); supportsFlush {
		if flushError := destinationFlusher.Flush(); flushError != nil {
			return writtenBytes, flushError
		}
	}
	return writtenBytes, nil
}
