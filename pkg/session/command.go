package session

import (
	"fmt"
	"strings"

	"spacetimeview/internal/models"
)

// CommandKind identifies a user action
type CommandKind int

const (
	// CmdSelectView switches the active view
	CmdSelectView CommandKind = iota

	// CmdSetRate changes the playback rate from text input
	CmdSetRate

	// CmdExport writes the active view out as an animated GIF
	CmdExport

	// CmdQuit ends the session
	CmdQuit
)

// Command is one dispatched user action
type Command struct {
	Kind CommandKind

	// View is the target view for CmdSelectView
	View models.View

	// Rate is the raw rate input for CmdSetRate. It is kept as text so
	// the session applies the validation and clamping rules itself.
	Rate string
}

// ParseCommand turns one input line into a command:
//
//	view <X-Y-T|Y-T-X|T-X-Y>
//	rate <fps>
//	export
//	quit
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	switch strings.ToLower(fields[0]) {
	case "view", "v":
		if len(fields) < 2 {
			return Command{}, fmt.Errorf("view requires an axis ordering, e.g. \"view Y-T-X\"")
		}
		view, err := models.ParseView(fields[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdSelectView, View: view}, nil

	case "rate", "fps", "r":
		if len(fields) < 2 {
			return Command{}, fmt.Errorf("rate requires a value, e.g. \"rate 30\"")
		}
		return Command{Kind: CmdSetRate, Rate: fields[1]}, nil

	case "export", "e":
		return Command{Kind: CmdExport}, nil

	case "quit", "exit", "q":
		return Command{Kind: CmdQuit}, nil

	default:
		return Command{}, fmt.Errorf("unknown command %q (view, rate, export, quit)", fields[0])
	}
}
