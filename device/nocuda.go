//go:build !cuda

package device

func cudaDevices() ([]Info, error) {
	return nil, nil
}
