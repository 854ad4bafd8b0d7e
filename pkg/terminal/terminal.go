package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-delve/liner"

	"github.com/spinifex/uvarint/pkg/config"
	"github.com/spinifex/uvarint/pkg/logflags"
	"github.com/spinifex/uvarint/pkg/terminal/starbind"
	"github.com/spinifex/uvarint/pkg/uvarint"
)

const historyFile string = ".uvarint_history"

// Term represents the interactive uvarint terminal.
type Term struct {
	conf   *config.Config
	prompt string
	line   *liner.State
	cmds   *Commands
	stdout io.Writer
	color  bool
	log    logflags.Logger

	mode   uvarint.DecodeMode
	format string

	starEnv *starbind.Env
}

// New returns a new Term. If out is nil the terminal writes to standard
// output, using colors when standard output is a terminal.
func New(conf *config.Config, out io.Writer) (*Term, error) {
	if conf == nil {
		conf = &config.Config{}
	}
	cmds := DefaultCommands()
	if conf.Aliases != nil {
		cmds.Merge(conf.Aliases)
	}

	mode, err := conf.Mode()
	if err != nil {
		return nil, err
	}
	format, err := conf.Format()
	if err != nil {
		return nil, err
	}

	color := false
	if out == nil {
		out, color = getColorableWriter()
		color = color && conf.UseColor()
	}

	return &Term{
		conf:   conf,
		prompt: "(uvarint) ",
		cmds:   cmds,
		stdout: out,
		color:  color,
		log:    logflags.TerminalLogger(),
		mode:   mode,
		format: format,
	}, nil
}

// SetMode changes the decode mode used by the decode command.
func (t *Term) SetMode(mode uvarint.DecodeMode) {
	t.mode = mode
}

// SetFormat changes how the encode command prints bytes.
func (t *Term) SetFormat(format string) {
	t.format = format
}

// Call executes a single command line.
func (t *Term) Call(cmdstr string) error {
	return t.cmds.Call(cmdstr, t)
}

func (t *Term) starlarkEnv() *starbind.Env {
	if t.starEnv == nil {
		t.starEnv = starbind.New(t.stdout, func() uvarint.DecodeMode { return t.mode })
	}
	return t.starEnv
}

// Close returns the terminal to its previous mode.
func (t *Term) Close() {
	if t.line != nil {
		t.line.Close()
	}
}

// Run begins running the terminal. It returns when the user exits or input
// ends.
func (t *Term) Run() (int, error) {
	t.line = liner.NewLiner()
	defer t.Close()
	t.line.SetCtrlCAborts(true)
	t.line.SetCompleter(t.cmds.Complete)

	fullHistoryFile, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		t.log.Warnf("unable to load history file: %v", err)
	}
	if f, err := os.Open(fullHistoryFile); err == nil {
		t.line.ReadHistory(f)
		f.Close()
	}
	defer t.saveHistory(fullHistoryFile)

	fmt.Fprintln(t.stdout, "Type 'help' for list of commands.")

	for {
		cmdstr, err := t.line.Prompt(t.prompt)
		if err != nil {
			if err == io.EOF || err == liner.ErrPromptAborted {
				fmt.Fprintln(t.stdout, "exit")
				return 0, nil
			}
			return 1, fmt.Errorf("prompt for input failed: %v", err)
		}
		if strings.TrimSpace(cmdstr) == "" {
			continue
		}
		t.line.AppendHistory(cmdstr)

		if err := t.Call(cmdstr); err != nil {
			if _, ok := err.(ExitRequestError); ok {
				return 0, nil
			}
			fmt.Fprintf(os.Stderr, "%s\n", t.colorize(ansiRed, "Command failed: "+err.Error()))
		}
	}
}

func (t *Term) saveHistory(path string) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		t.log.Warnf("unable to open history file: %v", err)
		return
	}
	defer f.Close()
	if _, err := t.line.WriteHistory(f); err != nil {
		t.log.Warnf("unable to write history file: %v", err)
	}
}
