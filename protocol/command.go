// SPDX-License-Identifier: EPL-2.0

package protocol

import "strconv"

// Command is a gbdserver command code.
type Command int32

const (
	Error             Command = -1
	Success           Command = 0
	ModuleInit        Command = 1
	Channels          Command = 2
	SampleRate        Command = 3
	PluginInit        Command = 4
	BeatDetectionFunc Command = 5
	PluginClose       Command = 6
)

// Valid reports whether c belongs to the command enumeration.
func (c Command) Valid() bool {
	return c >= Error && c <= PluginClose
}

func (c Command) String() string {
	switch c {
	case Error:
		return "ERROR"
	case Success:
		return "SUCCESS"
	case ModuleInit:
		return "MODULE_INIT"
	case Channels:
		return "CHANNELS"
	case SampleRate:
		return "SAMPLE_RATE"
	case PluginInit:
		return "PLUGIN_INIT"
	case BeatDetectionFunc:
		return "BEAT_DETECTION_FUNC"
	case PluginClose:
		return "PLUGIN_CLOSE"
	default:
		return "Command(" + strconv.Itoa(int(c)) + ")"
	}
}
