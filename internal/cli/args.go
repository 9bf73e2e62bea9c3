package cli

import (
	"fmt"
	"strconv"

	"github.com/roach88/bandwire/internal/model"
	"github.com/roach88/bandwire/internal/wire"
)

// argKind is the type of one positional command argument.
type argKind int

const (
	argInt argKind = iota
	argString
)

// commandArgs describes the arguments a server command expects.
type commandArgs struct {
	positional []argKind
	band       bool // a band document follows the positional arguments
}

// knownCommands mirrors the server's command set so arguments can be typed
// before sending. Unknown names are still sent, with string arguments.
var knownCommands = map[string]commandArgs{
	"add":                  {band: true},
	"add_if_max":           {band: true},
	"clear":                {},
	"filter_contains_name": {positional: []argKind{argString}},
	"help":                 {},
	"history":              {},
	"info":                 {},
	"print_ascending":      {},
	"remove_by_id":         {positional: []argKind{argInt}},
	"remove_lower":         {band: true},
	"show":                 {},
	"sum_of_albums_count":  {},
	"update":               {positional: []argKind{argInt}, band: true},
}

// needsBand reports whether command takes a band document.
func needsBand(command string) bool {
	return knownCommands[command].band
}

// buildArgs converts CLI arguments into wire values for command.
// band is appended for commands that take one.
func buildArgs(command string, raw []string, band *model.Band) ([]wire.Value, error) {
	sig, known := knownCommands[command]
	if !known {
		args := make([]wire.Value, len(raw))
		for i, s := range raw {
			args[i] = wire.String(s)
		}
		return args, nil
	}

	if len(raw) != len(sig.positional) {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", command, len(sig.positional), len(raw))
	}
	args := make([]wire.Value, 0, len(raw)+1)
	for i, kind := range sig.positional {
		switch kind {
		case argInt:
			n, err := strconv.ParseInt(raw[i], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: argument %d must be an integer, got %q", command, i+1, raw[i])
			}
			args = append(args, wire.Int(n))
		case argString:
			args = append(args, wire.String(raw[i]))
		}
	}
	if sig.band {
		if band == nil {
			return nil, fmt.Errorf("%s needs a band: pass --band <file>", command)
		}
		args = append(args, wire.NewBand(*band))
	}
	return args, nil
}
