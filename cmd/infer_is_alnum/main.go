package main

import (
	"os"

	arg "github.com/alexflint/go-arg"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/datasets/isalnum"
	"github.com/neurlang/harness/device"
	"github.com/neurlang/harness/inference"
)

func main() {
	var args struct {
		ArtifactDir string `arg:"--artifact-dir" help:"run directory"`
	}
	args.ArtifactDir = "is_alnum"
	arg.MustParse(&args)

	c, err := inference.LoadClassifier(artifact.New(nil, args.ArtifactDir), device.CPU())
	if err != nil {
		println(err.Error())
		os.Exit(1)
	}

	var wrong int
	for i := ' '; i < '~'; i++ {
		sample := isalnum.Sample(i)
		class, err := c.Predict(sample.Item())
		if err != nil {
			println(err.Error())
			os.Exit(1)
		}
		if class != sample.Output() {
			wrong++
		}
		println(i, string([]rune{i}), class == 1)
	}
	println("[infer errors]", wrong)
}
