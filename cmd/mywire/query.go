package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"
	"github.com/sqlpipe/mywire/pkg/client"
	"github.com/sqlpipe/mywire/pkg/config"
	"github.com/sqlpipe/mywire/pkg/mywirelog"
	"golang.org/x/sync/errgroup"
)

var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "connect and run a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		sql := strings.Join(args, " ")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// The connect outcome is single-assignment, so every retry attempt
		// builds a fresh connection. Retry lives here, not in the engine.
		var conn *client.Connection
		backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
		if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			conn = client.NewConnection(config.Get())
			if err := conn.Connect(ctx); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		}); err != nil {
			return err
		}
		defer func() {
			if err := conn.Close(context.Background()); err != nil {
				mywirelog.Zero.Debug().Err(err).Msg("failed to close connection")
			}
		}()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			rs, err := conn.Query(ctx, sql)
			if err != nil {
				return err
			}
			if rs == nil {
				fmt.Println("OK")
				return nil
			}
			fmt.Println(strings.Join(rs.ColumnNames(), "\t"))
			for _, row := range rs.Rows {
				cells := make([]string, len(row))
				for i, v := range row {
					if v == nil {
						cells[i] = "NULL"
					} else {
						cells[i] = fmt.Sprint(v)
					}
				}
				fmt.Println(strings.Join(cells, "\t"))
			}
			return nil
		})
		return g.Wait()
	},
}
