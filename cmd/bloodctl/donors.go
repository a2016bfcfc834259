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

var donorsCmd = &cli.Command{
	Name:  "donors",
	Usage: "Donor registry",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List donors",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "blood-type", Aliases: []string{"b"}, Usage: "only this blood type"},
				&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Usage: "only this location"},
				&cli.BoolFlag{Name: "available", Usage: "only available donors"},
			},
			Action: listDonors,
		},
		{
			Name:  "add",
			Usage: "Register a donor",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true},
				&cli.StringFlag{Name: "blood-type", Aliases: []string{"b"}, Required: true},
				&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Required: true},
				&cli.StringFlag{Name: "phone"},
				&cli.StringFlag{Name: "email"},
				&cli.BoolFlag{Name: "unavailable", Usage: "register as not available"},
			},
			Action: addDonor,
		},
		{
			Name:      "remove",
			Usage:     "Remove a donor from the registry",
			ArgsUsage: "<donor-id>",
			Action: func(c *cli.Context) error {
				id, err := requireArg(c, "donor-id")
				if err != nil {
					return err
				}
				return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
					if _, err := mc.RemoveDonor(ctx, &bloodlinkv1.DonorRef{DonorID: id}); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Donor %s removed\n", id)
					return nil
				})
			},
		},
		{
			Name:      "availability",
			Usage:     "Mark a donor available or not",
			ArgsUsage: "<donor-id> <true|false>",
			Action: func(c *cli.Context) error {
				if c.NArg() != 2 {
					return fmt.Errorf("expected <donor-id> <true|false>")
				}
				available, err := strconv.ParseBool(c.Args().Get(1))
				if err != nil {
					return fmt.Errorf("invalid availability %q: %w", c.Args().Get(1), err)
				}
				in := &bloodlinkv1.SetDonorAvailabilityRequest{DonorID: c.Args().Get(0), Available: available}

				return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
					resp, err := mc.SetDonorAvailability(ctx, in)
					if err != nil {
						return err
					}
					return printDonors(c, []domain.Donor{resp.Donor})
				})
			},
		},
	},
}

func listDonors(c *cli.Context) error {
	in := &bloodlinkv1.ListDonorsRequest{
		LocationID:    c.String("location"),
		AvailableOnly: c.Bool("available"),
	}
	if s := c.String("blood-type"); s != "" {
		bt, err := domain.ParseBloodType(s)
		if err != nil {
			return err
		}
		in.BloodType = bt
	}

	return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
		resp, err := mc.ListDonors(ctx, in)
		if err != nil {
			return err
		}
		if ok, err := printJSON(c, resp); ok {
			return err
		}
		return printDonors(c, resp.Donors)
	})
}

func addDonor(c *cli.Context) error {
	bt, err := domain.ParseBloodType(c.String("blood-type"))
	if err != nil {
		return err
	}
	available := !c.Bool("unavailable")
	in := &bloodlinkv1.RegisterDonorRequest{
		Name:       c.String("name"),
		BloodType:  bt,
		LocationID: c.String("location"),
		Phone:      c.String("phone"),
		Email:      c.String("email"),
		Available:  &available,
	}

	return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
		resp, err := mc.RegisterDonor(ctx, in)
		if err != nil {
			return err
		}
		return printDonors(c, []domain.Donor{resp.Donor})
	})
}

func printDonors(c *cli.Context, donors []domain.Donor) error {
	if ok, err := printJSON(c, donors); ok {
		return err
	}
	t := newTable(c.App.Writer, "ID", "NAME", "TYPE", "LOCATION", "AVAILABLE", "PHONE")
	for _, d := range donors {
		t.row(d.ID, d.Name, d.BloodType, d.LocationID, d.Available, d.Phone)
	}
	return t.flush()
}

var donationsCmd = &cli.Command{
	Name:  "donations",
	Usage: "Recent confirmed donations, newest first",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "limit", Value: 50},
	},
	Action: func(c *cli.Context) error {
		return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
			resp, err := mc.ListDonations(ctx, &bloodlinkv1.ListDonationsRequest{Limit: c.Int("limit")})
			if err != nil {
				return err
			}
			if ok, err := printJSON(c, resp); ok {
				return err
			}
			t := newTable(c.App.Writer, "AT", "DONOR", "NAME", "REQUEST", "PATIENT", "HOSPITAL", "TYPE", "UNITS")
			for _, d := range resp.Donations {
				t.row(d.DonatedAt.Format(timeLayout), d.DonorID, d.DonorName, d.RequestID,
					orDash(d.PatientName), orDash(d.Hospital), d.BloodType, d.Units)
			}
			return t.flush()
		})
	},
}
