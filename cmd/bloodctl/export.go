package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"bloodlink/pkg/api/bloodlinkv1"
	"bloodlink/pkg/client"
	"bloodlink/pkg/config"
)

var exportCmd = &cli.Command{
	Name:  "export",
	Usage: "Download an .xlsx snapshot of inventory, requests and donors",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "output directory (default from config export.dir)"},
	},
	Action: func(c *cli.Context) error {
		dir := c.String("dir")
		if dir == "" {
			dir = "exports"
			if cfg, err := config.Load(); err == nil && cfg.Export.Dir != "" {
				dir = cfg.Export.Dir
			}
		}

		return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
			resp, err := mc.ExportWorkbook(ctx, &bloodlinkv1.ExportWorkbookRequest{})
			if err != nil {
				return err
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create export dir: %w", err)
			}
			path := filepath.Join(dir, filepath.Base(resp.Filename))
			if err := os.WriteFile(path, resp.Content, 0o644); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}

			fmt.Fprintf(c.App.Writer, "Saved %s (%d bytes)\n", path, len(resp.Content))
			return nil
		})
	},
}
