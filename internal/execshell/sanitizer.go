package execshell

import "strings"

const (
	shellEscapeCharacterConstant = '\\'
	singleQuoteCharacterConstant = '\''
	doubleQuoteCharacterConstant = '"'
	highByteCharacterConstant    = 0xFF
)

var shellMetacharacters = map[byte]struct{}{
	'#': {}, '&': {}, ';': {}, '`': {}, '|': {}, '*': {}, '?': {}, '~': {},
	'<': {}, '>': {}, '^': {}, '(': {}, ')': {}, '[': {}, ']': {}, '{': {},
	'}': {}, '$': {}, '\\': {}, '\n': {}, highByteCharacterConstant: {},
}

// CommandSanitizer collapses characters that would otherwise change the shell's parsing of a command string.
// It is not an injection boundary.
type CommandSanitizer struct{}

// Sanitize escapes the supplied raw command.
func (sanitizer CommandSanitizer) Sanitize(rawCommand string) string {
	return EscapeShellCommand(rawCommand)
}

// EscapeShellCommand prefixes shell metacharacters with a backslash.
// Quotes stay untouched when a matching quote of the same kind appears later in the string.
func EscapeShellCommand(rawCommand string) string {
	var escapedBuilder strings.Builder
	escapedBuilder.Grow(len(rawCommand) * 2)

	closingQuoteIndex := -1
	for characterIndex := 0; characterIndex < len(rawCommand); characterIndex++ {
		character := rawCommand[characterIndex]

		switch character {
		case singleQuoteCharacterConstant, doubleQuoteCharacterConstant:
			if closingQuoteIndex < 0 {
				if matchOffset := strings.IndexByte(rawCommand[characterIndex+1:], character); matchOffset >= 0 {
					closingQuoteIndex = characterIndex + 1 + matchOffset
					escapedBuilder.WriteByte(character)
					continue
				}
			} else if closingQuoteIndex == characterIndex {
				closingQuoteIndex = -1
				escapedBuilder.WriteByte(character)
				continue
			}
			escapedBuilder.WriteByte(shellEscapeCharacterConstant)
			escapedBuilder.WriteByte(character)
		default:
			if _, isMetacharacter := shellMetacharacters[character]; isMetacharacter {
				escapedBuilder.WriteByte(shellEscapeCharacterConstant)
			}
			escapedBuilder.WriteByte(character)
		}
	}

	return escapedBuilder.String()
}
