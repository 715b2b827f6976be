package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/accel/pkg/accel"
)

type deviceInfo struct {
	Index   int    `json:"index"`
	Current bool   `json:"current"`
	Stream  string `json:"stream"`
}

func devicesCmd() *cli.Command {
	var jsonOut bool

	return &cli.Command{
		Name:  "devices",
		Usage: "List the active accelerator's devices",
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

			n, err := accel.DeviceCount()
			if err != nil {
				return err
			}
			if n == 0 {
				if jsonOut {
					fmt.Println("[]")
					return nil
				}
				fmt.Println("no accelerator devices (cpu fallback)")
				return nil
			}

			current, err := accel.GetDeviceIndex()
			if err != nil {
				return err
			}

			devices := make([]deviceInfo, 0, n)
			for i := 0; i < n; i++ {
				stream, err := accel.GetStream(i)
				if err != nil {
					return err
				}
				devices = append(devices, deviceInfo{
					Index:   i,
					Current: i == current,
					Stream:  stream.String(),
				})
			}

			if jsonOut {
				out, err := json.MarshalIndent(devices, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			for _, d := range devices {
				marker := " "
				if d.Current {
					marker = "*"
				}
				fmt.Printf("%s %d  stream=%s\n", marker, d.Index, d.Stream)
			}
			return nil
		},
	}
}
