package main

import (
	"os"
	"runtime"

	arg "github.com/alexflint/go-arg"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/datasets/squareroot"
	"github.com/neurlang/harness/device"
	"github.com/neurlang/harness/inference"
)

func main() {
	var args struct {
		ArtifactDir string `arg:"--artifact-dir" help:"run directory"`
	}
	args.ArtifactDir = "squareroot"
	arg.MustParse(&args)

	r, err := inference.LoadRegressor(artifact.New(nil, args.ArtifactDir), device.CPU())
	if err != nil {
		println(err.Error())
		os.Exit(1)
	}

	rep, err := r.Evaluate(squareroot.New(squareroot.Medium).Test(), runtime.NumCPU())
	if err != nil {
		println(err.Error())
		os.Exit(1)
	}
	println("[infer mse]", rep.MSE, "max error", rep.MaxError, "over", rep.Items, "samples")
}
