package hostmem

import "golang.org/x/sys/unix"

func probe() Report {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return Report{}
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return Report{
		Total: uint64(info.Totalram) * unit,
		Free:  uint64(info.Freeram) * unit,
	}
}
