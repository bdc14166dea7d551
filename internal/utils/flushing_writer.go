package utils

import (
	"io"
	"strings"
	"sync"
)

const lineTerminatorConstant = "\n"

type flusher interface {
	Flush() error
}

// FlushingWriter serializes writes to an underlying writer and flushes it after every write when it supports Flush.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps writer. A writer that is already a FlushingWriter is returned unchanged.
func NewFlushingWriter(writer io.Writer) *FlushingWriter {
	if existing, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return existing
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the underlying writer and flushes it when possible.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return len(data), nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	return flushingWriter.writeAndFlush(data)
}

// WriteLines writes each line followed by a newline as a single flushed write.
func (flushingWriter *FlushingWriter) WriteLines(lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	_, writeError := flushingWriter.Write([]byte(strings.Join(lines, lineTerminatorConstant) + lineTerminatorConstant))
	return writeError
}

func (flushingWriter *FlushingWriter) writeAndFlush(data []byte) (int, error) {
	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	if flushableWriter, implementsFlush := flushingWriter.writer.(flusher); implementsFlush {
		if flushError := flushableWriter.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}

	return bytesWritten, nil
}
