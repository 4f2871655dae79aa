package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"btroute/internal/device"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and the active device per role",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dial()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			status, err := client.Status()
			if err != nil {
				return fmt.Errorf("fetch status: %w", err)
			}

			state := "stopped"
			if status.Running {
				state = "running"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon:        %s (pid %d)\n", state, status.PID)
			fmt.Fprintf(out, "Audio mode:    %s\n", status.Mode)
			fmt.Fprintf(out, "Wired monitor: %s\n", onOff(status.WiredMonitor))
			fmt.Fprintf(out, "Lock file:     %s\n", status.LockPath)
			if status.RecencyDBPath != "" {
				fmt.Fprintf(out, "Recency DB:    %s\n", status.RecencyDBPath)
			}
			if len(status.Marked) > 0 {
				fmt.Fprintf(out, "LE hearing aids: %s\n", strings.Join(status.Marked, ", "))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderRoles(status.Active))
			return nil
		},
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func renderRoles(active map[string]string) string {
	rows := make([][]string, 0, device.NumRoles)
	for _, role := range device.Roles() {
		addr := active[role.String()]
		if addr == "" {
			addr = "-"
		}
		rows = append(rows, []string{role.String(), addr})
	}
	return renderTable([]string{"ROLE", "ACTIVE DEVICE"}, rows)
}
