package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	arg "github.com/alexflint/go-arg"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/neurlang/harness/logger"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type env struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
}

type handler interface {
	Handle(ctx context.Context, e *env) error
}

type validator interface {
	Validate() error
}

type command struct {
	Name     string
	Synopsis string
	Args     handler
}

func prog() string {
	if len(os.Args) > 0 {
		return filepath.Base(os.Args[0])
	}
	return "harness"
}

func writeUsage(w io.Writer, cmds ...command) {
	fmt.Fprintf(w, "Usage: %s COMMAND [ARGS]\n", prog())
	fmt.Fprintf(w, "Command can be one of:\n")
	for _, cmd := range cmds {
		fmt.Fprintf(w, "  %-20s %s\n", cmd.Name, cmd.Synopsis)
	}
	fmt.Fprintf(w, "  %-20s %s\n", "help", "display this help and exit")
	fmt.Fprintf(w, "  %-20s %s\n", "help COMMAND", "display help for command and exit")
}

// dispatch parses args for the selected command and runs it, returning the
// process exit code.
func dispatch(ctx context.Context, e *env, args []string, cmds ...command) int {
	if len(args) < 1 {
		writeUsage(e.stderr, cmds...)
		fmt.Fprintln(e.stderr, "\nError: no command provided")
		return exitUsage
	}

	var help bool
	action := args[0]
	if action == "help" {
		if len(args) < 2 {
			writeUsage(e.stdout, cmds...)
			return exitOK
		}
		help = true
		action = args[1]
	}

	var cmd *command
	for i := range cmds {
		if cmds[i].Name == action {
			cmd = &cmds[i]
			break
		}
	}
	if cmd == nil {
		writeUsage(e.stderr, cmds...)
		fmt.Fprintln(e.stderr, "\nError: unknown command", action)
		return exitUsage
	}

	parser, err := arg.NewParser(arg.Config{Program: prog() + " " + action}, cmd.Args)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return exitUsage
	}
	if help {
		parser.WriteHelp(e.stdout)
		return exitOK
	}

	if err := parser.Parse(args[1:]); err != nil {
		if err == arg.ErrHelp {
			parser.WriteHelp(e.stdout)
			return exitOK
		}
		parser.WriteUsage(e.stderr)
		fmt.Fprintln(e.stderr, "error:", err)
		return exitUsage
	}
	if v, ok := cmd.Args.(validator); ok {
		if err := v.Validate(); err != nil {
			parser.WriteUsage(e.stderr)
			fmt.Fprintln(e.stderr, "error:", err)
			return exitUsage
		}
	}

	if err := cmd.Args.Handle(ctx, e); err != nil {
		fmt.Fprintln(e.stderr, "error:", err)
		return exitError
	}
	return exitOK
}

type logArgs struct {
	LogLevel string `arg:"--log-level,env:HARNESS_LOG_LEVEL" help:"debug, info, warn or error"`
	Console  bool   `arg:"--console" help:"human readable log entries"`
}

func defaultLogArgs() logArgs {
	return logArgs{LogLevel: "info"}
}

func (a logArgs) logger(e *env) (*zap.Logger, error) {
	level, err := logger.ParseLevel(a.LogLevel)
	if err != nil {
		return nil, err
	}
	return logger.NewWriters(logger.Options{Level: level, Console: a.Console}, e.stdout, e.stderr), nil
}

const (
	taskClassification = "classification"
	taskRegression     = "regression"
)

func validateTask(task string) error {
	switch task {
	case taskClassification, taskRegression:
		return nil
	}
	return errors.Errorf("unknown task %q, want %s or %s", task, taskClassification, taskRegression)
}
