package cli

import (
	"fmt"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sync",
		Short:        "Trigger a delivery cycle now",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newAPIClient(rootOpts.Addr).do("POST", "/api/sync", nil)
			if err != nil {
				return err
			}
			if rootOpts.JSON {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			var resp struct {
				Delivered   int    `json:"delivered"`
				Failed      int    `json:"failed"`
				SkipReason  string `json:"skip_reason"`
				Interrupted bool   `json:"interrupted"`
			}
			if err := json.Unmarshal(data, &resp); err != nil {
				return err
			}
			if resp.SkipReason != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped: %s\n", resp.SkipReason)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "delivered %d, failed %d\n", resp.Delivered, resp.Failed)
			if resp.Interrupted {
				fmt.Fprintln(cmd.OutOrStdout(), "cycle was interrupted before finishing")
			}
			return nil
		},
	}
	return cmd
}

// NewPendingCommand creates the pending command.
func NewPendingCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "pending",
		Short:        "Count undelivered records across all queues",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newAPIClient(rootOpts.Addr).do("GET", "/api/pending-count", nil)
			if err != nil {
				return err
			}
			if rootOpts.JSON {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			var resp struct {
				Count int `json:"count"`
			}
			if err := json.Unmarshal(data, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Count)
			return nil
		},
	}
	return cmd
}

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Yes bool
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:          "clear",
		Short:        "Purge every stored record",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Yes {
				return fmt.Errorf("refusing to purge all records without --yes")
			}
			if _, err := newAPIClient(opts.Addr).do("DELETE", "/api/records", nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm the purge")

	return cmd
}

// NewQueuesCommand creates the queues command.
func NewQueuesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "queues",
		Short:        "List registered queues",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newAPIClient(rootOpts.Addr).do("GET", "/api/queues", nil)
			if err != nil {
				return err
			}
			if rootOpts.JSON {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			var queues []struct {
				Name       string `json:"name"`
				Endpoint   string `json:"endpoint"`
				Method     string `json:"method"`
				MaxRetries int    `json:"max_retries"`
			}
			if err := json.Unmarshal(data, &queues); err != nil {
				return err
			}
			if len(queues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no queues registered")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMETHOD\tENDPOINT\tMAX RETRIES")
			for _, q := range queues {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", q.Name, q.Method, q.Endpoint, q.MaxRetries)
			}
			return w.Flush()
		},
	}
	return cmd
}
