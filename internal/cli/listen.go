package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/hermeshq/hermes/internal/protocol/sse"
	"github.com/hermeshq/hermes/internal/protocol/ws"
)

type listenOptions struct {
	headers []string
}

func newListenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Listen on streaming endpoints",
	}
	cmd.AddCommand(newListenWSCommand(), newListenSSECommand())
	return cmd
}

func newListenWSCommand() *cobra.Command {
	opts := &listenOptions{}

	cmd := &cobra.Command{
		Use:   "ws URL",
		Short: "Connect to a WebSocket endpoint",
		Long:  "Connect to a ws:// or wss:// endpoint, print incoming frames, and send lines read from stdin as text frames. Interrupt to disconnect.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListenWS(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "Handshake header (format: 'Key: Value')")
	return cmd
}

func runListenWS(cmd *cobra.Command, endpoint string, opts *listenOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conn, err := ws.Dial(ctx, endpoint, parseHeaderFlags(opts.headers))
	if err != nil {
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close()
	fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s\n", endpoint)

	go func() {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			if err := conn.SendText(scanner.Text()); err != nil {
				return
			}
		}
	}()

	done := make(chan error, 1)
	go func() {
		for {
			msg, err := conn.Receive(context.Background())
			if err != nil {
				done <- err
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", msg.At.Format("15:04:05"), msg.Data)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		return err
	}
}

func newListenSSECommand() *cobra.Command {
	opts := &listenOptions{}
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "sse URL",
		Short: "Subscribe to a Server-Sent-Events endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			err := sse.Subscribe(ctx, args[0], parseHeaderFlags(opts.headers), func(ev sse.Event) {
				label := ev.Type
				if label == "" {
					label = "message"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", label, ev.Data)
			})
			if ctx.Err() != nil {
				return nil // interrupted or timed out, not a failure
			}
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "Request header (format: 'Key: Value')")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Disconnect after this duration (0 = no limit)")
	return cmd
}
