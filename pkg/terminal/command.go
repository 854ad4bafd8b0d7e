package terminal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cosiner/argv"
	"github.com/derekparker/trie"

	"github.com/spinifex/uvarint/pkg/config"
	"github.com/spinifex/uvarint/pkg/logflags"
	"github.com/spinifex/uvarint/pkg/uvarint"
)

type cmdfunc func(t *Term, args []string) error

type command struct {
	aliases []string
	helpMsg string
	cmdFn   cmdfunc
}

// Returns true if the command string matches one of the aliases for this command
func (c command) match(cmdstr string) bool {
	for _, v := range c.aliases {
		if v == cmdstr {
			return true
		}
	}
	return false
}

// Commands represents the commands of the interactive terminal.
type Commands struct {
	cmds   []command
	lookup *trie.Trie
}

// ExitRequestError is returned when the user exits the terminal.
type ExitRequestError struct{}

func (ere ExitRequestError) Error() string {
	return ""
}

var errNoCmd = errors.New("command not available")

// DefaultCommands returns the commands of the interactive terminal.
func DefaultCommands() *Commands {
	c := &Commands{}

	c.cmds = []command{
		{aliases: []string{"help", "h"}, cmdFn: c.help, helpMsg: `Prints the help message.

	help [command]

Type "help" followed by the name of a command for more information about it.`},
		{aliases: []string{"encode", "e"}, cmdFn: encodeCmd, helpMsg: `Encodes values as varints.

	encode <value> [value...]

Values are decimal numbers, hexadecimal numbers prefixed by 0x or the uv300
display form.`},
		{aliases: []string{"decode", "d"}, cmdFn: decodeCmd, helpMsg: `Decodes varints.

	decode <bytes> [bytes...]

Each argument is one varint written in hexadecimal, for example ac02,
"ac 02" or 0xac,0x02. The current decode mode (see 'help mode') decides how
malformed input is treated.`},
		{aliases: []string{"len"}, cmdFn: lenCmd, helpMsg: `Prints the number of bytes of the minimal encoding of values.

	len <value> [value...]`},
		{aliases: []string{"mode"}, cmdFn: modeCmd, helpMsg: `Shows or changes the decode mode.

	mode [strict|lenient]

strict rejects unterminated input, bytes after the terminating byte and
redundant zero groups. lenient ignores bytes after the terminating byte and
decodes unterminated input as 0.`},
		{aliases: []string{"format"}, cmdFn: formatCmd, helpMsg: `Shows or changes how encoded bytes are printed.

	format [hex|dec|raw]`},
		{aliases: []string{"source"}, cmdFn: sourceCmd, helpMsg: `Executes a starlark script.

	source <path>

The script can call encode(n), decode(b, strict=None), uv_len(n),
uv_format(n) and help(name). When strict is not given decode uses the
current decode mode.`},
		{aliases: []string{"exit", "quit", "q"}, cmdFn: exitCommand, helpMsg: "Exit the terminal."},
	}

	sort.Sort(byFirstAlias(c.cmds))
	c.buildLookup()
	return c
}

type byFirstAlias []command

func (a byFirstAlias) Len() int           { return len(a) }
func (a byFirstAlias) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byFirstAlias) Less(i, j int) bool { return a[i].aliases[0] < a[j].aliases[0] }

func (c *Commands) buildLookup() {
	c.lookup = trie.New()
	for i := range c.cmds {
		for _, alias := range c.cmds[i].aliases {
			c.lookup.Add(alias, i)
		}
	}
}

// Merge takes aliases defined in the config struct and merges them with the default aliases.
func (c *Commands) Merge(allAliases map[string][]string) {
	for i := range c.cmds {
		if aliases, ok := allAliases[c.cmds[i].aliases[0]]; ok {
			c.cmds[i].aliases = append(c.cmds[i].aliases, aliases...)
		}
	}
	c.buildLookup()
}

// Find returns the command matching cmdstr. An exact alias wins, otherwise
// cmdstr must be an unambiguous prefix of the aliases of a single command.
func (c *Commands) Find(cmdstr string) (command, error) {
	if cmdstr == "" {
		return command{}, errNoCmd
	}
	if node, ok := c.lookup.Find(cmdstr); ok {
		return c.cmds[node.Meta().(int)], nil
	}
	idx := -1
	for _, alias := range c.lookup.PrefixSearch(cmdstr) {
		node, _ := c.lookup.Find(alias)
		i := node.Meta().(int)
		if idx >= 0 && idx != i {
			return command{}, fmt.Errorf("ambiguous command %q", cmdstr)
		}
		idx = i
	}
	if idx < 0 {
		return command{}, errNoCmd
	}
	return c.cmds[idx], nil
}

// Complete returns the aliases starting with line.
func (c *Commands) Complete(line string) []string {
	r := c.lookup.PrefixSearch(strings.ToLower(line))
	sort.Strings(r)
	return r
}

// Call executes the command line cmdstr.
func (c *Commands) Call(cmdstr string, t *Term) error {
	args, err := splitArgs(cmdstr)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	cmd, err := c.Find(args[0])
	if err != nil {
		if err == errNoCmd {
			return fmt.Errorf("command %q not available", args[0])
		}
		return err
	}
	if logflags.Terminal() {
		t.log.WithField("cmd", cmd.aliases[0]).Debugf("args=%q", args[1:])
	}
	return cmd.cmdFn(t, args[1:])
}

func splitArgs(cmdstr string) ([]string, error) {
	v, err := argv.Argv(cmdstr,
		func(s string) (string, error) {
			return "", fmt.Errorf("backtick not supported in '%s'", s)
		},
		nil)
	if err != nil {
		return nil, err
	}
	if len(v) > 1 {
		return nil, fmt.Errorf("pipes not supported in '%s'", cmdstr)
	}
	if len(v) == 0 {
		return nil, nil
	}
	return v[0], nil
}

func (c *Commands) help(t *Term, args []string) error {
	if len(args) > 0 {
		cmd, err := c.Find(args[0])
		if err != nil {
			return fmt.Errorf("no help for %q: %v", args[0], err)
		}
		fmt.Fprintln(t.stdout, cmd.helpMsg)
		return nil
	}

	fmt.Fprintln(t.stdout, "The following commands are available:")
	w := new(tabwriter.Writer)
	w.Init(t.stdout, 0, 8, 0, '-', 0)
	for _, cmd := range c.cmds {
		h := cmd.helpMsg
		if idx := strings.Index(h, "\n"); idx >= 0 {
			h = h[:idx]
		}
		if len(cmd.aliases) > 1 {
			fmt.Fprintf(w, "    %s (alias: %s) \t %s\n", cmd.aliases[0], strings.Join(cmd.aliases[1:], " | "), h)
		} else {
			fmt.Fprintf(w, "    %s \t %s\n", cmd.aliases[0], h)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(t.stdout, "Type help followed by a command for full documentation.")
	return nil
}

func encodeCmd(t *Term, args []string) error {
	if len(args) == 0 {
		return errors.New("not enough arguments")
	}
	for _, arg := range args {
		v, err := uvarint.Parse(arg)
		if err != nil {
			return err
		}
		b, err := v.Bytes()
		if err != nil {
			return err
		}
		fmt.Fprintf(t.stdout, "%s => %s\n", t.colorize(ansiCyan, v.String()), t.colorize(ansiYellow, FormatBytes(b, t.format)))
	}
	return nil
}

func decodeCmd(t *Term, args []string) error {
	if len(args) == 0 {
		return errors.New("not enough arguments")
	}
	for _, arg := range args {
		b, err := ParseHexBytes(arg)
		if err != nil {
			return err
		}
		v, err := t.mode.Decode(b)
		if err != nil {
			return err
		}
		fmt.Fprintf(t.stdout, "%s => %s\n", t.colorize(ansiYellow, FormatBytes(b, config.FormatHex)), t.colorize(ansiCyan, v.String()))
	}
	return nil
}

func lenCmd(t *Term, args []string) error {
	if len(args) == 0 {
		return errors.New("not enough arguments")
	}
	for _, arg := range args {
		v, err := uvarint.Parse(arg)
		if err != nil {
			return err
		}
		n := v.Len()
		note := ""
		if n > uvarint.MaxLen {
			note = t.colorize(ansiRed, fmt.Sprintf(" (exceeds %d)", uvarint.MaxLen))
		}
		fmt.Fprintf(t.stdout, "%s: %d bytes%s\n", t.colorize(ansiCyan, v.String()), n, note)
	}
	return nil
}

func modeCmd(t *Term, args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintln(t.stdout, t.mode)
		return nil
	case 1:
		mode, err := uvarint.ParseDecodeMode(args[0])
		if err != nil {
			return err
		}
		t.mode = mode
		return nil
	}
	return errors.New("too many arguments")
}

func formatCmd(t *Term, args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintln(t.stdout, t.format)
		return nil
	case 1:
		format, err := config.ParseFormat(args[0])
		if err != nil {
			return err
		}
		t.format = format
		return nil
	}
	return errors.New("too many arguments")
}

func sourceCmd(t *Term, args []string) error {
	if len(args) != 1 {
		return errors.New("wrong number of arguments: source <path>")
	}
	_, err := t.starlarkEnv().Execute(args[0], nil)
	return err
}

func exitCommand(t *Term, args []string) error {
	return ExitRequestError{}
}
