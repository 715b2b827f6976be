package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/accel/internal/hostmem"
	"github.com/samcharles93/accel/pkg/accel"
)

type acceleratorInfo struct {
	Type          string          `json:"type"`
	Compiled      []string        `json:"compiled_backends"`
	DeviceCount   int             `json:"device_count"`
	CurrentDevice *int            `json:"current_device,omitempty"`
	HostMemory    *hostmem.Report `json:"host_memory,omitempty"`
}

func infoCmd() *cli.Command {
	var jsonOut bool

	return &cli.Command{
		Name:  "info",
		Usage: "Show the active accelerator for this machine",
		Flags: append(loggingFlags(),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print machine-readable output",
				Destination: &jsonOut,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyLoggingConfig(cmd, LoadConfig())
			if _, err := newLog(); err != nil {
				return err
			}

			info, err := collectInfo()
			if err != nil {
				return err
			}

			if jsonOut {
				out, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("accelerator: %s\n", info.Type)
			if len(info.Compiled) > 0 {
				fmt.Printf("compiled:    %s\n", strings.Join(info.Compiled, ", "))
			} else {
				fmt.Printf("compiled:    none\n")
			}
			if info.Type == accel.CPU.String() {
				if info.HostMemory != nil && info.HostMemory.Total > 0 {
					fmt.Printf("host memory: %d MiB total, %d MiB free\n",
						info.HostMemory.Total>>20, info.HostMemory.Free>>20)
				}
				return nil
			}
			fmt.Printf("devices:     %d\n", info.DeviceCount)
			if info.CurrentDevice != nil {
				fmt.Printf("current:     %d\n", *info.CurrentDevice)
			}
			return nil
		},
	}
}

func collectInfo() (acceleratorInfo, error) {
	t, _ := accel.Accelerator(false)

	compiled := make([]string, 0, 2)
	for _, ct := range accel.RegisteredTypes() {
		compiled = append(compiled, ct.String())
	}
	info := acceleratorInfo{Type: t.String(), Compiled: compiled}

	if t == accel.CPU {
		mem := hostmem.Probe()
		info.HostMemory = &mem
		return info, nil
	}

	n, err := accel.DeviceCount()
	if err != nil {
		return info, err
	}
	info.DeviceCount = n

	current, err := accel.GetDeviceIndex()
	if err != nil {
		return info, err
	}
	info.CurrentDevice = &current
	return info, nil
}
