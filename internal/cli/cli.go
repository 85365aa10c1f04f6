// Package cli parses murmur command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Command string

const (
	CommandTranscribe Command = "transcribe"
	CommandModels     Command = "models"
	CommandDoctor     Command = "doctor"
	CommandVersion    Command = "version"
	CommandHelp       Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandTranscribe: {},
	CommandModels:     {},
	CommandDoctor:     {},
	CommandVersion:    {},
	CommandHelp:       {},
}

// DefaultChunkMillis is the streaming chunk duration used when --chunk-ms is unset.
const DefaultChunkMillis = 160

type Parsed struct {
	Command     Command
	ConfigPath  string
	Model       string
	ChunkMillis int
	AudioPath   string
	ShowHelp    bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true, ChunkMillis: DefaultChunkMillis}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		case "--model":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--model requires a catalog ID")
			}
			parsed.Model = args[i]
		case "--chunk-ms":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--chunk-ms requires a millisecond count")
			}
			millis, err := strconv.Atoi(args[i])
			if err != nil || millis <= 0 {
				return Parsed{}, fmt.Errorf("--chunk-ms must be a positive integer, got %q", args[i])
			}
			parsed.ChunkMillis = millis
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			if cmd == CommandTranscribe {
				i++
				if i >= len(args) {
					return Parsed{}, fmt.Errorf("%s requires an audio file path", cmd)
				}
				parsed.AudioPath = args[i]
			}
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", cmd)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  transcribe FILE   Stream a PCM16 WAV file through the engine in chunks
  models            List catalog models and their download state
  doctor            Run settings and model readiness checks
  version           Print version information
  help              Show this help

Flags:
  --config PATH     Settings file path (default: $XDG_CONFIG_HOME/murmur/settings.yaml)
  --model ID        Override the selected model for this run
  --chunk-ms N      Streaming chunk duration in milliseconds (default: %d)
  -h, --help        Show help
  --version         Show version
`, binaryName, DefaultChunkMillis)
}
