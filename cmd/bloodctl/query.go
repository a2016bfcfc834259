package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"bloodlink/pkg/api/bloodlinkv1"
	"bloodlink/pkg/client"
	"bloodlink/pkg/domain"
)

var rankCmd = &cli.Command{
	Name:      "rank",
	Usage:     "Preview donors for a blood type at a location, nearest first",
	ArgsUsage: "<blood-type> <location-id>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "compatible", Usage: "include unreachable donors (distance = -1)"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("expected <blood-type> <location-id>")
		}
		bt, err := domain.ParseBloodType(c.Args().Get(0))
		if err != nil {
			return err
		}
		in := &bloodlinkv1.RankDonorsRequest{BloodType: bt, LocationID: c.Args().Get(1)}

		return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
			var (
				resp *bloodlinkv1.RankDonorsResponse
				err  error
			)
			if c.Bool("compatible") {
				resp, err = mc.CompatibleDonors(ctx, in)
			} else {
				resp, err = mc.RankDonors(ctx, in)
			}
			if err != nil {
				return err
			}
			if ok, err := printJSON(c, resp); ok {
				return err
			}

			t := newTable(c.App.Writer, "DONOR", "NAME", "TYPE", "LOCATION", "KM", "PATH")
			for _, cand := range resp.Candidates {
				km := fmt.Sprint(cand.Distance)
				if cand.Distance < 0 {
					km = "-"
				}
				t.row(cand.Donor.ID, cand.Donor.Name, cand.Donor.BloodType, cand.Donor.LocationID, km, strings.Join(cand.Path, " -> "))
			}
			return t.flush()
		})
	},
}

var routeCmd = &cli.Command{
	Name:      "route",
	Usage:     "Shortest road route between two locations",
	ArgsUsage: "<from> <to>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("expected <from> <to>")
		}
		in := &bloodlinkv1.RouteRequest{From: c.Args().Get(0), To: c.Args().Get(1)}

		return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
			resp, err := mc.Route(ctx, in)
			if err != nil {
				return err
			}
			if ok, err := printJSON(c, resp); ok {
				return err
			}
			if !resp.Found {
				fmt.Fprintf(c.App.Writer, "No route from %s to %s\n", in.From, in.To)
				return nil
			}
			fmt.Fprintf(c.App.Writer, "%s (%d km)\n", strings.Join(resp.Names, " -> "), resp.Distance)
			return nil
		})
	},
}
