// Command lox runs Lox scripts and the interactive prompt.
//
// Usage:
//
//	lox                            Start interactive REPL
//	lox <script>                   Run a script
//	lox run <script>               Run a script
//	lox repl                       Start interactive REPL
//	lox tokens [--json] <script>   Print tokens
//	lox parse <script>             Print AST as JSON
//	lox dumpconfig                 Show configuration values
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"lox-lang/internal/config"
	"lox-lang/internal/driver"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"gopkg.in/urfave/cli.v1"
)

// Exit codes follow the sysexits convention.
const (
	exitUsage   = 64
	exitNoInput = 66
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	traceFlag = cli.BoolFlag{
		Name:  "trace",
		Usage: "Write interpreter debug traces to stderr",
	}
	noColorFlag = cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored diagnostics",
	}
	jsonFlag = cli.BoolFlag{
		Name:  "json",
		Usage: "Print tokens as JSON",
	}

	runCommand = cli.Command{
		Action:    runScript,
		Name:      "run",
		Usage:     "Run a script",
		ArgsUsage: "<script>",
	}
	replCommand = cli.Command{
		Action: runRepl,
		Name:   "repl",
		Usage:  "Start the interactive prompt",
	}
	tokensCommand = cli.Command{
		Action:    printTokens,
		Name:      "tokens",
		Usage:     "Scan a script and print its tokens",
		ArgsUsage: "<script>",
		Flags:     []cli.Flag{jsonFlag},
	}
	parseCommand = cli.Command{
		Action:    printAST,
		Name:      "parse",
		Usage:     "Parse a script and print its syntax tree as JSON",
		ArgsUsage: "<script>",
	}
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		Description: `The dumpconfig command shows the effective configuration as TOML.`,
	}
)

// settings is the configuration loaded before any command runs.
type settings struct {
	cfg    config.Config
	logger *slog.Logger
	stderr io.Writer
	color  bool
}

var current settings

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "lox"
	app.Usage = "the Lox tree-walking interpreter"
	app.ArgsUsage = "[script]"
	app.Flags = []cli.Flag{configFileFlag, traceFlag, noColorFlag}
	app.Commands = []cli.Command{
		runCommand,
		replCommand,
		tokensCommand,
		parseCommand,
		dumpConfigCommand,
	}
	app.Before = setup
	app.Action = defaultAction
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config file and applies flags on top of it.
func setup(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.GlobalString(configFileFlag.Name))
	if err != nil {
		return cli.NewExitError(err.Error(), exitUsage)
	}
	if ctx.GlobalBool(noColorFlag.Name) {
		cfg.REPL.Color = false
	}

	level, _ := cfg.Log.SlogLevel()
	if ctx.GlobalBool(traceFlag.Name) {
		level = slog.LevelDebug
	}

	current = settings{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
		stderr: colorable.NewColorableStderr(),
		color:  cfg.REPL.Color,
	}
	return nil
}

// defaultAction runs a script when given one and the REPL otherwise.
func defaultAction(ctx *cli.Context) error {
	switch ctx.NArg() {
	case 0:
		return runRepl(ctx)
	case 1:
		return runPath(ctx.Args().First())
	default:
		return cli.NewExitError("Usage: lox [script]", exitUsage)
	}
}

func runScript(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("Usage: lox run <script>", exitUsage)
	}
	return runPath(ctx.Args().First())
}

func runPath(path string) error {
	session := newSession(os.Stdout)
	status, err := session.RunFile(path)
	if err != nil {
		return cli.NewExitError(err.Error(), exitNoInput)
	}
	if code := status.ExitCode(); code != 0 {
		return cli.NewExitError("", code)
	}
	return nil
}

// newSession builds a session that reports through the configured writer.
func newSession(stdout io.Writer) *driver.Session {
	return driver.NewSession(stdout, current.stderr,
		driver.WithReporter(diagReporter(current.color)),
		driver.WithLogger(current.logger),
	)
}

// readScript reads the single script argument of an inspection command.
func readScript(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", cli.NewExitError(fmt.Sprintf("Usage: lox %s <script>", ctx.Command.Name), exitUsage)
	}
	source, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return "", cli.NewExitError(err.Error(), exitNoInput)
	}
	return string(source), nil
}

func dumpConfig(ctx *cli.Context) error {
	return config.Dump(os.Stdout, &current.cfg)
}

// errorColor is the color used for diagnostics.
func errorColor(enabled bool) *color.Color {
	c := color.New(color.FgRed)
	if !enabled {
		c.DisableColor()
	}
	return c
}
