package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/accel/pkg/accel"
)

func syncCmd() *cli.Command {
	var device int64

	return &cli.Command{
		Name:  "sync",
		Usage: "Block until a device finishes its outstanding work",
		Flags: append(loggingFlags(),
			&cli.Int64Flag{
				Name:        "device",
				Aliases:     []string{"d"},
				Usage:       "device index",
				Value:       0,
				Destination: &device,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			applyLoggingConfig(cmd, cfg)
			applyDeviceConfig(cmd, cfg, &device)
			log, err := newLog()
			if err != nil {
				return err
			}

			// Engage the driver first; synchronizing a backend this
			// process never touched is a no-op by design.
			n, err := accel.DeviceCount()
			if err != nil {
				return err
			}
			if device >= int64(n) {
				return fmt.Errorf("device %d out of range (have %d devices)", device, n)
			}

			start := time.Now()
			if err := accel.SynchronizeDevice(int(device)); err != nil {
				return err
			}
			log.Info("device synchronized", "device", device, "took", time.Since(start))
			return nil
		},
	}
}
