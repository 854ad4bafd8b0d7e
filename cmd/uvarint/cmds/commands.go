package cmds

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spinifex/uvarint/pkg/config"
	"github.com/spinifex/uvarint/pkg/logflags"
	"github.com/spinifex/uvarint/pkg/terminal"
	"github.com/spinifex/uvarint/pkg/terminal/starbind"
	"github.com/spinifex/uvarint/pkg/uvarint"
	"github.com/spinifex/uvarint/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// decodeMode overrides the decode mode of the config file.
	decodeMode string
	// outputFormat overrides the output format of the config file.
	outputFormat string
	// verbose makes the version command print build information.
	verbose bool

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command

	conf *config.Config
)

const uvarintCommandLongDesc = `uvarint encodes and decodes unsigned varints.

An unsigned varint stores a number seven bits per byte, least significant
group first, setting the high bit of every byte except the last. Encodings are
at most 9 bytes long, so the largest value is 9223372036854775807.`

// New returns an initialized command tree.
func New(docCall bool) *cobra.Command {
	// Main uvarint root command.
	rootCommand = &cobra.Command{
		Use:           "uvarint",
		Short:         "uvarint encodes and decodes unsigned varints.",
		Long:          uvarintCommandLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logflags.Setup(log, logOutput, logDest); err != nil {
				return err
			}
			if docCall {
				conf = &config.Config{}
				return nil
			}
			return loadConfig(cmd.Flags())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logflags.Close()
		},
	}

	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", `Comma separated list of components that should produce debug output (cli, terminal, script, config).`)
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor.")
	rootCommand.PersistentFlags().StringVarP(&decodeMode, "mode", "m", "", `Decode mode, strict or lenient (default from config, strict if unset).`)
	rootCommand.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", `Output format of encoded bytes: hex, dec or raw (default from config, hex if unset).`)

	// 'encode' subcommand.
	encodeCommand := &cobra.Command{
		Use:   "encode value [value...]",
		Short: "Encode values as varints.",
		Long: `Encode values as varints, printing one encoding per line.

Values are decimal numbers, hexadecimal numbers prefixed by 0x or the uv300
display form. With --format=raw the encodings are written back to back with
no separator.`,
		Args: cobra.MinimumNArgs(1),
		RunE: encodeCmd,
	}
	rootCommand.AddCommand(encodeCommand)

	// 'decode' subcommand.
	decodeCommand := &cobra.Command{
		Use:   "decode bytes [bytes...]",
		Short: "Decode varints.",
		Long: `Decode varints, printing one decimal number per line.

Each argument is one varint written in hexadecimal, for example ac02, "ac 02"
or 0xac,0x02.`,
		Args: cobra.MinimumNArgs(1),
		RunE: decodeCmd,
	}
	rootCommand.AddCommand(decodeCommand)

	// 'repl' subcommand.
	replCommand := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive terminal.",
		Args:  cobra.NoArgs,
		RunE:  replCmd,
	}
	rootCommand.AddCommand(replCommand)

	// 'script' subcommand.
	scriptCommand := &cobra.Command{
		Use:   "script file.star",
		Short: "Run a starlark script.",
		Long: `Run a starlark script with access to the varint codec.

The script can call encode(n), decode(b, strict=None), uv_len(n),
uv_format(n) and help(name), and read the constants MAX_LEN and MAX_VALUE.`,
		Args: cobra.ExactArgs(1),
		RunE: scriptCmd,
	}
	rootCommand.AddCommand(scriptCommand)

	// 'version' subcommand.
	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "uvarint\n%s\n", version.UvarintVersion)
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "Build Details: %s\n", version.BuildInfo())
			}
		},
	}
	versionCommand.Flags().BoolVarP(&verbose, "verbose", "v", false, "print verbose version info")
	rootCommand.AddCommand(versionCommand)

	return rootCommand
}

func loadConfig(flags *pflag.FlagSet) error {
	var err error
	conf, err = config.LoadConfig()
	if err != nil {
		return err
	}
	if flags.Changed("mode") {
		conf.DecodeMode = decodeMode
	}
	if flags.Changed("format") {
		conf.OutputFormat = outputFormat
	}
	if _, err := conf.Mode(); err != nil {
		return err
	}
	_, err = conf.Format()
	return err
}

func encodeCmd(cmd *cobra.Command, args []string) error {
	format, _ := conf.Format()
	out := cmd.OutOrStdout()
	logger := logflags.CLILogger()
	for _, arg := range args {
		v, err := uvarint.Parse(arg)
		if err != nil {
			return err
		}
		b, err := v.Bytes()
		if err != nil {
			return err
		}
		if logflags.CLI() {
			logger.WithField("value", v).Debugf("encoded to %d bytes", len(b))
		}
		if format == config.FormatRaw {
			if _, err := out.Write(b); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(out, terminal.FormatBytes(b, format))
	}
	return nil
}

func decodeCmd(cmd *cobra.Command, args []string) error {
	mode, _ := conf.Mode()
	logger := logflags.CLILogger().WithField("mode", mode)
	for _, arg := range args {
		b, err := terminal.ParseHexBytes(arg)
		if err != nil {
			return err
		}
		v, err := mode.Decode(b)
		if err != nil {
			return err
		}
		if logflags.CLI() {
			logger.Debugf("decoded % x to %v", b, v)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", v)
	}
	return nil
}

func replCmd(cmd *cobra.Command, args []string) error {
	term, err := terminal.New(conf, nil)
	if err != nil {
		return err
	}
	status, err := term.Run()
	if err != nil {
		return err
	}
	if status != 0 {
		return errors.New("terminal exited with errors")
	}
	return nil
}

func scriptCmd(cmd *cobra.Command, args []string) error {
	mode, _ := conf.Mode()
	env := starbind.New(cmd.OutOrStdout(), func() uvarint.DecodeMode { return mode })
	_, err := env.Execute(args[0], nil)
	return err
}

// Execute runs the command tree, printing errors to stderr.
func Execute(root *cobra.Command, stderr io.Writer) int {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
