package cli

import (
	"fmt"
	"net/url"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"uplink"
)

// EnqueueOptions holds flags for the enqueue command.
type EnqueueOptions struct {
	*RootOptions
	Payload    string
	LocalID    string
	ServerID   string
	PathSuffix string
}

// NewEnqueueCommand creates the enqueue command.
func NewEnqueueCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EnqueueOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:          "enqueue <queue>",
		Short:        "Enqueue a raw JSON payload",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnqueue(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Payload, "payload", "", "JSON payload (required)")
	cmd.Flags().StringVar(&opts.LocalID, "local-id", "", "fixed local id (idempotency key)")
	cmd.Flags().StringVar(&opts.ServerID, "server-id", "", "known server-side id")
	cmd.Flags().StringVar(&opts.PathSuffix, "path-suffix", "", "static endpoint suffix, e.g. /42")
	_ = cmd.MarkFlagRequired("payload")

	return cmd
}

func runEnqueue(opts *EnqueueOptions, queue string, cmd *cobra.Command) error {
	if !json.Valid([]byte(opts.Payload)) {
		return fmt.Errorf("--payload is not valid JSON")
	}

	req := map[string]any{"payload": json.RawMessage(opts.Payload)}
	if opts.LocalID != "" {
		req["local_id"] = opts.LocalID
	}
	if opts.ServerID != "" {
		req["server_id"] = opts.ServerID
	}
	if opts.PathSuffix != "" {
		req["path_suffix"] = opts.PathSuffix
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	data, err := newAPIClient(opts.Addr).do("POST", recordsPath(queue), body)
	if err != nil {
		return err
	}
	if opts.JSON {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	var resp struct {
		LocalID string `json:"local_id"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.LocalID)
	return nil
}

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Pending bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:          "list <queue>",
		Short:        "List stored records of a queue",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Pending, "pending", false, "only records the next cycle would attempt")

	return cmd
}

func runList(opts *ListOptions, queue string, cmd *cobra.Command) error {
	path := recordsPath(queue)
	if opts.Pending {
		path += "?pending=1"
	}

	data, err := newAPIClient(opts.Addr).do("GET", path, nil)
	if err != nil {
		return err
	}
	if opts.JSON {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	var recs []uplink.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no records")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOCAL ID\tSTATUS\tRETRIES\tCREATED\tERROR")
	for _, rec := range recs {
		errMsg := ""
		if rec.ErrorMessage != nil {
			errMsg = *rec.ErrorMessage
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			rec.LocalID, rec.Status, rec.RetryCount,
			rec.CreatedAt.Format(time.RFC3339), errMsg)
	}
	return w.Flush()
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "remove <queue> <local-id>",
		Short:        "Discard a record without delivering it",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := newAPIClient(rootOpts.Addr).do("DELETE", recordPath(args[0], args[1]), nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "removed")
			return nil
		},
	}
	return cmd
}

// NewRequeueCommand creates the requeue command.
func NewRequeueCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "requeue <queue> <local-id>",
		Short:        "Put a dead or stuck record back into rotation",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := newAPIClient(rootOpts.Addr).do("POST", recordPath(args[0], args[1])+"/requeue", nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "requeued")
			return nil
		},
	}
	return cmd
}

func recordsPath(queue string) string {
	return "/api/queues/" + url.PathEscape(queue) + "/records"
}

func recordPath(queue, localID string) string {
	return recordsPath(queue) + "/" + url.PathEscape(localID)
}
