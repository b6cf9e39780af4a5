package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-pdfit/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	if slices.Contains(os.Args, "-v") || slices.Contains(os.Args, "--verbose") {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches args[1] to its command and returns the exit code.
func runMain(args []string, env *Environment) int {
	env.fillDefaults()

	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "convert":
		return runConvert(ctx, rest, env)
	case "merge", "split", "text", "protect", "unprotect", "compress", "rotate", "reorder":
		return runPDFCommand(ctx, cmd, rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "config":
		return runConfigCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "pdfit %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "%v: %s\n\n", ErrUnknownCommand, cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// fillDefaults sets the production value of every nil field, so tests
// only inject what they need.
func (env *Environment) fillDefaults() {
	def := DefaultEnv()
	if env.Stdout == nil {
		env.Stdout = def.Stdout
	}
	if env.Stderr == nil {
		env.Stderr = def.Stderr
	}
	if env.Config == nil {
		env.Config = config.DefaultConfig()
	}
	if env.NewEngine == nil {
		env.NewEngine = def.NewEngine
	}
	if env.NewPool == nil {
		env.NewPool = def.NewPool
	}
}
