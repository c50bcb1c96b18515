// Package cli implements the uplinkctl admin commands, driving a running
// daemon over its HTTP API.
package cli

import "github.com/spf13/cobra"

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Addr string
	JSON bool
}

// NewRootCommand creates the root command for uplinkctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "uplinkctl",
		Short: "Admin client for the uplink daemon",
		Long:  "uplinkctl inspects queued records, triggers delivery cycles, and purges queues on a running uplink daemon.",
	}

	cmd.PersistentFlags().StringVar(&opts.Addr, "addr", "http://localhost:8080", "daemon base URL")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "print raw JSON responses")

	cmd.AddCommand(NewEnqueueCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewRequeueCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewPendingCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewQueuesCommand(opts))

	return cmd
}
