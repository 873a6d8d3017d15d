package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, &env{fs: afero.NewOsFs(), stdout: os.Stdout, stderr: os.Stderr}, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, e *env, args []string) int {
	return dispatch(ctx, e, args,
		command{Name: "train", Synopsis: "train a model into an artifact directory", Args: newTrainArgs()},
		command{Name: "infer", Synopsis: "predict with the model of an artifact directory", Args: newInferArgs()},
		command{Name: "devices", Synopsis: "list the devices of this host", Args: &devicesArgs{}},
	)
}
