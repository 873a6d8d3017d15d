//go:build cuda

package device

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/cu"
)

func cudaDevices() ([]Info, error) {
	n, err := cu.NumDevices()
	if err != nil {
		return nil, errors.Wrap(err, "cuda")
	}
	var infos []Info
	for i := 0; i < n; i++ {
		dev := cu.Device(i)
		name, err := dev.Name()
		if err != nil {
			return infos, errors.Wrapf(err, "cuda:%d", i)
		}
		mem, err := dev.TotalMem()
		if err != nil {
			return infos, errors.Wrapf(err, "cuda:%d", i)
		}
		major, minor, err := dev.ComputeCapability()
		if err != nil {
			return infos, errors.Wrapf(err, "cuda:%d", i)
		}
		infos = append(infos, Info{
			Device: Device{Kind: KindCUDA, Index: i},
			Name:   name,
			Detail: fmt.Sprintf("memory=%d compute=%d.%d", mem, major, minor),
		})
	}
	return infos, nil
}
