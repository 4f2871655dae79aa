package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the active device per audio role",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			devices, err := client.Devices()
			if err != nil {
				return fmt.Errorf("fetch devices: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRoles(devices.Active))
			return nil
		},
	}
}

func newWiredCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "wired",
		Short: "Signal that a wired audio device was plugged in",
		Long:  "Fires the wired-audio trigger, clearing every Bluetooth audio role.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			resp, err := client.Wired()
			if err != nil {
				return fmt.Errorf("trigger wired audio: %w", err)
			}
			if !resp.Triggered {
				return fmt.Errorf("daemon did not acknowledge the trigger")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wired audio signaled; Bluetooth routing yielded.")
			return nil
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			resp, err := client.Stop()
			if err != nil {
				return fmt.Errorf("stop daemon: %w", err)
			}
			if !resp.Stopped {
				return fmt.Errorf("daemon did not acknowledge the stop request")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped.")
			return nil
		},
	}
}
