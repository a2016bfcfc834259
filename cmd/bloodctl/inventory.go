package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"bloodlink/pkg/api/bloodlinkv1"
	"bloodlink/pkg/client"
	"bloodlink/pkg/domain"
)

var inventoryCmd = &cli.Command{
	Name:  "inventory",
	Usage: "Blood bank stock",
	Subcommands: []*cli.Command{
		{
			Name:  "show",
			Usage: "Show stock for all eight blood types",
			Action: func(c *cli.Context) error {
				return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
					resp, err := mc.GetInventory(ctx, &bloodlinkv1.GetInventoryRequest{})
					if err != nil {
						return err
					}
					if ok, err := printJSON(c, resp); ok {
						return err
					}
					t := newTable(c.App.Writer, "TYPE", "TOTAL", "RESERVED", "AVAILABLE")
					for _, e := range resp.Entries {
						t.row(e.BloodType, e.Total, e.Reserved, e.Available())
					}
					return t.flush()
				})
			},
		},
		adjustCmd(bloodlinkv1.OpAdd, "Add units to the bank"),
		adjustCmd(bloodlinkv1.OpRemove, "Remove units from the bank"),
		adjustCmd(bloodlinkv1.OpReserve, "Set the Emergency-only reserve"),
	},
}

func adjustCmd(op, usage string) *cli.Command {
	return &cli.Command{
		Name:      op,
		Usage:     usage,
		ArgsUsage: "<blood-type> <units>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected <blood-type> <units>")
			}
			bt, err := domain.ParseBloodType(c.Args().Get(0))
			if err != nil {
				return err
			}
			units, err := strconv.Atoi(c.Args().Get(1))
			if err != nil {
				return fmt.Errorf("invalid units %q: %w", c.Args().Get(1), err)
			}

			return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
				resp, err := mc.AdjustInventory(ctx, &bloodlinkv1.AdjustInventoryRequest{BloodType: bt, Op: op, Units: units})
				if err != nil {
					return err
				}
				if ok, err := printJSON(c, resp); ok {
					return err
				}
				e := resp.Entry
				fmt.Fprintf(c.App.Writer, "%s: total %d, reserved %d, available %d\n", e.BloodType, e.Total, e.Reserved, e.Available())
				return nil
			})
		},
	}
}
