package ui

import "strings"

// LogLevel returns the ESP-IDF level letter of a miner log line
// ("E (1234) tag: message"), or 0 when the line has no level prefix.
func LogLevel(line string) byte {
	if len(line) < 3 || line[1] != ' ' || line[2] != '(' {
		return 0
	}
	if strings.IndexByte("EWIDV", line[0]) < 0 {
		return 0
	}
	return line[0]
}

// ColorizeLogLine colors a miner log line by its level.
// Lines without a level prefix are unchanged.
func ColorizeLogLine(line string) string {
	switch LogLevel(line) {
	case 'E':
		return LogErrorStyle.Render(line)
	case 'W':
		return LogWarnStyle.Render(line)
	case 'I':
		return LogInfoStyle.Render(line)
	case 'D', 'V':
		return LogDebugStyle.Render(line)
	}
	return line
}
