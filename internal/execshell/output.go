package execshell

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	statusMarkerTemplateConstant     = "__procexec_status_%s__:"
	backgroundScriptTemplateConstant = "( %s ); echo %s$?"
	statusTrailerTailSlackConstant   = 32
	outputLineBreakCharacterConstant = "\n"
	outputLineTrimCharactersConstant = " \t\r\x00\x0B"
)

// ParseOutputLines splits captured text into trimmed, non-blank lines in their original order.
func ParseOutputLines(capturedText string) []string {
	parsedLines := make([]string, 0)
	for _, rawLine := range strings.Split(capturedText, outputLineBreakCharacterConstant) {
		trimmedLine := strings.Trim(rawLine, outputLineTrimCharactersConstant)
		if len(trimmedLine) == 0 {
			continue
		}
		parsedLines = append(parsedLines, trimmedLine)
	}
	return parsedLines
}

// NewStatusMarker returns a delimiter that is unique per invocation.
func NewStatusMarker() string {
	return fmt.Sprintf(statusMarkerTemplateConstant, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// BuildBackgroundScript wraps the command so the shell prints the marker followed by the command's exit status.
// The subshell keeps an explicit exit inside the command from skipping the trailer.
func BuildBackgroundScript(command string, marker string) string {
	return fmt.Sprintf(backgroundScriptTemplateConstant, command, marker)
}

// SplitStatusTrailer separates command output from the exit status echoed after the last occurrence of marker.
// The boolean is false when the trailer is missing or does not hold an integer.
func SplitStatusTrailer(capturedText string, marker string) (string, int, bool) {
	markerIndex := strings.LastIndex(capturedText, marker)
	if markerIndex < 0 {
		return capturedText, ExitCodeExited, false
	}

	commandOutput := capturedText[:markerIndex]
	statusText := strings.TrimSpace(capturedText[markerIndex+len(marker):])
	exitCode, parseError := strconv.Atoi(statusText)
	if parseError != nil {
		return commandOutput, ExitCodeExited, false
	}
	return commandOutput, exitCode, true
}

// boundedOutputBuffer keeps the first limit bytes written and, when tailCapacity is positive,
// the last tailCapacity bytes as well so a trailer survives truncation.
type boundedOutputBuffer struct {
	head         bytes.Buffer
	limit        int
	tail         []byte
	tailCapacity int
	totalWritten int
}

func newBoundedOutputBuffer(limit int, tailCapacity int) *boundedOutputBuffer {
	return &boundedOutputBuffer{limit: limit, tailCapacity: tailCapacity}
}

func (buffer *boundedOutputBuffer) Write(data []byte) (int, error) {
	buffer.totalWritten += len(data)

	if buffer.limit <= 0 {
		return buffer.head.Write(data)
	}

	remaining := buffer.limit - buffer.head.Len()
	if remaining > 0 {
		if len(data) <= remaining {
			buffer.head.Write(data)
		} else {
			buffer.head.Write(data[:remaining])
		}
	}

	if buffer.tailCapacity > 0 {
		buffer.tail = append(buffer.tail, data...)
		if overflow := len(buffer.tail) - buffer.tailCapacity; overflow > 0 {
			buffer.tail = append(buffer.tail[:0], buffer.tail[overflow:]...)
		}
	}

	// Report every byte as consumed so the copying goroutine never sees a short write.
	return len(data), nil
}

func (buffer *boundedOutputBuffer) Truncated() bool {
	return buffer.limit > 0 && buffer.totalWritten > buffer.limit
}

// String returns the retained head.
func (buffer *boundedOutputBuffer) String() string {
	return buffer.head.String()
}

// splitStatusTrailer recovers the command output and exit status from a background capture.
// The tail only supplies the trailer; command output never extends past the head, so both
// execution paths report the same lines. The boolean reports whether command output was truncated.
func (buffer *boundedOutputBuffer) splitStatusTrailer(marker string) (string, int, bool) {
	if !buffer.Truncated() || buffer.tailCapacity <= 0 {
		commandOutput, exitCode, _ := SplitStatusTrailer(buffer.head.String(), marker)
		return commandOutput, exitCode, buffer.Truncated()
	}

	commandOutput := buffer.head.String()
	markerIndex := bytes.LastIndex(buffer.tail, []byte(marker))
	if markerIndex < 0 {
		return commandOutput, ExitCodeExited, true
	}

	_, exitCode, _ := SplitStatusTrailer(string(buffer.tail[markerIndex:]), marker)
	commandOutputLength := buffer.totalWritten - (len(buffer.tail) - markerIndex)
	if commandOutputLength < len(commandOutput) {
		commandOutput = commandOutput[:commandOutputLength]
	}
	return commandOutput, exitCode, commandOutputLength > buffer.limit
}
