package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
)

// cli holds the persistent flags and the client factory.
type cli struct {
	natsURL string
	jsonOut bool
	timeout time.Duration

	connect func(ctx context.Context, c *cli) (client, error)
}

// newRootCmd builds the command tree. A nil connect selects NATS when
// --nats is set and an in-process engine otherwise.
func newRootCmd(connect func(ctx context.Context, c *cli) (client, error)) *cobra.Command {
	c := &cli{connect: connect}
	if c.connect == nil {
		c.connect = defaultConnect
	}

	root := &cobra.Command{
		Use:           "fitmentctl",
		Short:         "Look up battery fitment for vehicles and vehicles for batteries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.natsURL, "nats", "", "NATS URL of a running fitment API (default: resolve in-process)")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "print the structured result as JSON")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "overall request timeout")

	root.AddCommand(
		&cobra.Command{
			Use:     "battery <vehicle description>",
			Short:   "Find batteries that fit a vehicle",
			Example: `  fitmentctl battery 2020 Honda CBR600`,
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.run(cmd, func(ctx context.Context, cl client) (any, string, error) {
					resp, err := cl.Battery(ctx, strings.Join(args, " "))
					return resp.Result, resp.Text, err
				})
			},
		},
		&cobra.Command{
			Use:     "vehicles <battery model>",
			Short:   "Find vehicles that take a battery model",
			Example: `  fitmentctl vehicles YTX14-BS`,
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.run(cmd, func(ctx context.Context, cl client) (any, string, error) {
					resp, err := cl.Vehicles(ctx, args[0])
					return resp.Result, resp.Text, err
				})
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show vector catalog statistics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(cmd, func(ctx context.Context, cl client) (any, string, error) {
					s, err := cl.Stats(ctx)
					return s, formatStats(s), err
				})
			},
		},
	)
	return root
}

func (c *cli) run(cmd *cobra.Command, f func(context.Context, client) (any, string, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
	defer cancel()

	cl, err := c.connect(ctx, c)
	if err != nil {
		return err
	}
	defer cl.Close()

	v, text, err := f(ctx, cl)
	if err != nil {
		return err
	}
	return c.print(cmd.OutOrStdout(), v, text)
}

func (c *cli) print(w io.Writer, v any, text string) error {
	if c.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func formatStats(s domain.CatalogStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "backend:     %s\n", s.Backend)
	fmt.Fprintf(&b, "collection:  %s\n", s.Collection)
	fmt.Fprintf(&b, "points:      %d\n", s.Points)
	if s.VectorSize > 0 {
		fmt.Fprintf(&b, "vector size: %d\n", s.VectorSize)
	}
	return strings.TrimRight(b.String(), "\n")
}
