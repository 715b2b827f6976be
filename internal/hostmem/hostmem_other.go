//go:build !linux

package hostmem

func probe() Report {
	return Report{}
}
