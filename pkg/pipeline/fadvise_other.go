//go:build !linux

package pipeline

import "os"

func adviseSequential(_ *os.File) error {
	return nil
}
