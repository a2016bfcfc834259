package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/client"
	"bloodlink/pkg/config"
)

const (
	flagAddr    = "addr"
	flagTimeout = "timeout"
	flagRetries = "retries"
	flagJSON    = "json"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "bloodctl",
		Usage: "Operate the blood request matching service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagAddr,
				Usage:   "matching-svc gRPC address (default from config services.matching)",
				EnvVars: []string{"BLOODCTL_ADDR"},
			},
			&cli.DurationFlag{
				Name:  flagTimeout,
				Value: 10 * time.Second,
				Usage: "per-call timeout",
			},
			&cli.IntFlag{
				Name:  flagRetries,
				Value: 3,
				Usage: "retries on Unavailable",
			},
			&cli.BoolFlag{
				Name:  flagJSON,
				Usage: "print raw JSON instead of tables",
			},
		},
		Commands: []*cli.Command{
			requestCmd,
			processCmd,
			confirmCmd,
			cancelCmd,
			completeCmd,
			historyCmd,
			rankCmd,
			routeCmd,
			inventoryCmd,
			donorsCmd,
			donationsCmd,
			exportCmd,
		},
	}
}

// dial открывает клиента по глобальным флагам; адрес по умолчанию
// берётся из конфигурации сервиса
func dial(c *cli.Context) (*client.MatchingClient, error) {
	ep := config.ServiceEndpoint{Host: "localhost", Port: 50051}
	if cfg, err := config.Load(); err == nil {
		ep = cfg.Services.Matching
	}

	cc := client.FromEndpoint(ep)
	if addr := c.String(flagAddr); addr != "" {
		cc.Address = addr
	}
	cc.Timeout = c.Duration(flagTimeout)
	cc.MaxRetries = c.Int(flagRetries)
	cc.LoadBalancing = ""

	return client.NewMatchingClient(c.Context, cc)
}

// call выполняет fn с таймаутом и переводит ошибку gRPC в читаемый вид
func call(c *cli.Context, fn func(ctx context.Context, mc *client.MatchingClient) error) error {
	mc, err := dial(c)
	if err != nil {
		return err
	}
	defer mc.Close()

	ctx, cancel := context.WithTimeout(c.Context, c.Duration(flagTimeout))
	defer cancel()

	if err := fn(ctx, mc); err != nil {
		appErr := apperror.FromGRPC(err)
		return fmt.Errorf("%s: %s", appErr.Code, appErr.Message)
	}
	return nil
}

// printJSON печатает v с отступами, если задан --json
func printJSON(c *cli.Context, v any) (bool, error) {
	if !c.Bool(flagJSON) {
		return false, nil
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}
