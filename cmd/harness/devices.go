package main

import (
	"context"
	"fmt"

	"github.com/neurlang/harness/device"
)

type devicesArgs struct{}

func (devicesArgs) Handle(ctx context.Context, e *env) error {
	infos, err := device.Probe()
	for _, info := range infos {
		fmt.Fprintln(e.stdout, info)
	}
	return err
}
