// Package run runs the top-level task of a command-line program.
package run

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ridge/must/v2"
	"github.com/ridge/parallel"
	"github.com/ridge/quarry/tlog"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	fs        = pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	logFormat = tlog.FormatText
)

func init() {
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Var(&logFormat, "log-format", "Log format (json|text)")
	fs.String("log-color", "", "Colored logs (yes|no|auto)")
	fs.BoolP("verbose", "v", false, "Enable verbose (debug level) messages, including per-object dumps")
	// Hide usage while parsing the command line here, will be covered by a regular command line parsing.
	fs.Usage = func() {}

	// Add options help to the main command-line parser.
	pflag.CommandLine.AddFlagSet(fs)
}

// Tool runs the top-level task of the program, watching for signals.
//
// The context passed to the task contains a logger configured by the
// --log-format, --log-color and --verbose flags. If an interruption or
// termination signal arrives, the context is closed.
//
// Tool does not return. It exits with code 0 if the task returns nil, with
// 128 plus the signal number if a signal stopped it, and with code 1 if the
// task returns an error.
//
//	func main() {
//	    pflag.Parse()
//	    run.Tool(func(ctx context.Context) error {
//	        return analysis.Run(ctx, cfg)
//	    })
//	}
func Tool(task func(ctx context.Context) error) {
	// os.Exit doesn't run deferred functions, so we'll call it in the first
	// defer which runs last
	var err error
	defer func() {
		var wec WithExitCode
		if errors.As(err, &wec) {
			os.Exit(wec.ExitCode())
		}
		if err != nil {
			os.Exit(1)
		}
	}()

	ctx := rootContext()
	err = run(ctx, task)
	if err != nil {
		tlog.Get(ctx).Error("Error", zap.Error(err))
	}
}

func run(ctx context.Context, task func(ctx context.Context) error) error {
	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("main", parallel.Exit, task)
		spawn("signals", parallel.Exit, handleSignals)
		return nil
	})
}

// WithExitCode is an optional interface that can be implemented by an error.
//
// When a (possibly wrapped) error implementing WithExitCode reaches the top
// level, the value returned by the ExitCode method becomes the exit code of the
// process. The default exit code for other errors is 1.
type WithExitCode interface {
	ExitCode() int
}

// cliConfig returns the Config derived from the command line
func cliConfig() tlog.Config {
	if err := fs.Parse(os.Args[1:]); err != nil && !errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	color := tlog.ColorAuto
	if fs.Lookup("log-color").Changed {
		colorArg := must.OK1(fs.GetString("log-color"))
		switch colorArg {
		case "", "auto":
			color = tlog.ColorAuto
		case "yes":
			color = tlog.ColorYes
		case "no":
			color = tlog.ColorNo
		default:
			panic(fmt.Sprintf("invalid --log-color value %q", colorArg))
		}
	}

	return tlog.Config{
		Format:  logFormat,
		Color:   color,
		Verbose: must.OK1(fs.GetBool("verbose")),
	}
}

func rootContext() context.Context {
	logger := tlog.New(cliConfig())
	return tlog.WithLogger(context.Background(), logger)
}
