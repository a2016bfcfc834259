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

var requestCmd = &cli.Command{
	Name:  "request",
	Usage: "Create, show and list blood requests",
	Subcommands: []*cli.Command{
		{
			Name:  "create",
			Usage: "Register a new Pending request",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "blood-type", Aliases: []string{"b"}, Required: true, Usage: "recipient blood type, e.g. O-"},
				&cli.IntFlag{Name: "units", Aliases: []string{"u"}, Value: 1, Usage: "units requested"},
				&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Required: true, Usage: "location id of the hospital"},
				&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Value: "Urgent", Usage: "Emergency, Urgent or Scheduled"},
				&cli.StringFlag{Name: "patient", Usage: "patient name"},
				&cli.StringFlag{Name: "hospital", Usage: "hospital name"},
				&cli.StringFlag{Name: "requester", Usage: "requester name"},
				&cli.StringFlag{Name: "phone", Usage: "requester phone"},
				&cli.StringFlag{Name: "relation", Usage: "requester relation to the patient"},
				&cli.BoolFlag{Name: "process", Usage: "run a fulfillment attempt right away"},
			},
			Action: createRequest,
		},
		{
			Name:      "show",
			Usage:     "Show one request",
			ArgsUsage: "<request-id>",
			Action: func(c *cli.Context) error {
				id, err := requireArg(c, "request-id")
				if err != nil {
					return err
				}
				return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
					resp, err := mc.GetRequest(ctx, &bloodlinkv1.RequestRef{RequestID: id})
					if err != nil {
						return err
					}
					return printRequest(c, resp.Request)
				})
			},
		},
		{
			Name:  "list",
			Usage: "List requests, optionally by status",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Pending, Matched, Fulfilled or Cancelled"},
			},
			Action: func(c *cli.Context) error {
				var status domain.RequestStatus
				if s := c.String("status"); s != "" {
					parsed, err := domain.ParseRequestStatus(s)
					if err != nil {
						return err
					}
					status = parsed
				}
				return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
					resp, err := mc.ListRequests(ctx, &bloodlinkv1.ListRequestsRequest{Status: status})
					if err != nil {
						return err
					}
					if ok, err := printJSON(c, resp); ok {
						return err
					}
					t := newTable(c.App.Writer, "ID", "TYPE", "UNITS", "LOCATION", "PRIORITY", "STATUS", "SOURCE")
					for _, r := range resp.Requests {
						t.row(r.ID, r.BloodType, r.Units, r.LocationID, r.Priority, r.Status, r.Source)
					}
					return t.flush()
				})
			},
		},
	},
}

func createRequest(c *cli.Context) error {
	bt, err := domain.ParseBloodType(c.String("blood-type"))
	if err != nil {
		return err
	}
	priority, err := domain.ParsePriority(c.String("priority"))
	if err != nil {
		return err
	}

	return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
		resp, err := mc.CreateRequest(ctx, &bloodlinkv1.CreateRequestRequest{
			BloodType:   bt,
			Units:       c.Int("units"),
			LocationID:  c.String("location"),
			Priority:    priority,
			PatientName: c.String("patient"),
			Hospital:    c.String("hospital"),
			Requester: domain.Requester{
				Name:     c.String("requester"),
				Phone:    c.String("phone"),
				Relation: c.String("relation"),
			},
		})
		if err != nil {
			return err
		}

		req := resp.Request
		if c.Bool("process") {
			processed, err := mc.ProcessRequest(ctx, &bloodlinkv1.RequestRef{RequestID: req.ID})
			if err != nil {
				return err
			}
			req = processed.Request
		}
		return printRequest(c, req)
	})
}

// requestAction общий обработчик команд "<verb> <request-id>"
func requestAction(rpc func(context.Context, *client.MatchingClient, *bloodlinkv1.RequestRef) (*bloodlinkv1.RequestResponse, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		id, err := requireArg(c, "request-id")
		if err != nil {
			return err
		}
		return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
			resp, err := rpc(ctx, mc, &bloodlinkv1.RequestRef{RequestID: id})
			if err != nil {
				return err
			}
			return printRequest(c, resp.Request)
		})
	}
}

var processCmd = &cli.Command{
	Name:      "process",
	Usage:     "Run one fulfillment attempt: donor match, bank draw or defer",
	ArgsUsage: "<request-id>",
	Action: requestAction(func(ctx context.Context, mc *client.MatchingClient, ref *bloodlinkv1.RequestRef) (*bloodlinkv1.RequestResponse, error) {
		return mc.ProcessRequest(ctx, ref)
	}),
}

var confirmCmd = &cli.Command{
	Name:      "confirm",
	Usage:     "Confirm that the matched donor donated",
	ArgsUsage: "<request-id>",
	Action: requestAction(func(ctx context.Context, mc *client.MatchingClient, ref *bloodlinkv1.RequestRef) (*bloodlinkv1.RequestResponse, error) {
		return mc.ConfirmMatch(ctx, ref)
	}),
}

var cancelCmd = &cli.Command{
	Name:      "cancel",
	Usage:     "Cancel a Pending or Matched request",
	ArgsUsage: "<request-id>",
	Action: requestAction(func(ctx context.Context, mc *client.MatchingClient, ref *bloodlinkv1.RequestRef) (*bloodlinkv1.RequestResponse, error) {
		return mc.CancelRequest(ctx, ref)
	}),
}

var completeCmd = &cli.Command{
	Name:      "complete",
	Usage:     "Mark a Pending or Matched request Fulfilled without recording a donation",
	ArgsUsage: "<request-id>",
	Action: requestAction(func(ctx context.Context, mc *client.MatchingClient, ref *bloodlinkv1.RequestRef) (*bloodlinkv1.RequestResponse, error) {
		return mc.CompleteRequest(ctx, ref)
	}),
}

var historyCmd = &cli.Command{
	Name:      "history",
	Usage:     "Show recorded status changes of a request",
	ArgsUsage: "<request-id>",
	Action: func(c *cli.Context) error {
		id, err := requireArg(c, "request-id")
		if err != nil {
			return err
		}
		return call(c, func(ctx context.Context, mc *client.MatchingClient) error {
			resp, err := mc.ListTransitions(ctx, &bloodlinkv1.RequestRef{RequestID: id})
			if err != nil {
				return err
			}
			if ok, err := printJSON(c, resp); ok {
				return err
			}
			t := newTable(c.App.Writer, "AT", "EVENT", "FROM", "TO", "SOURCE", "DONOR", "KM")
			for _, tr := range resp.Transitions {
				t.row(tr.OccurredAt.Format(timeLayout), tr.Event, tr.From, tr.To, tr.Source, tr.DonorID, tr.Distance)
			}
			return t.flush()
		})
	},
}

func printRequest(c *cli.Context, r *domain.BloodRequest) error {
	if ok, err := printJSON(c, r); ok {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Request  %s\n", r.ID)
	fmt.Fprintf(w, "Status   %s\n", r.Status)
	fmt.Fprintf(w, "Need     %d unit(s) of %s at %s (%s)\n", r.Units, r.BloodType, r.LocationID, r.Priority)
	if r.Source != domain.SourceNone {
		fmt.Fprintf(w, "Source   %s\n", r.Source)
	}
	if d := r.MatchedDonor; d != nil {
		fmt.Fprintf(w, "Donor    %s (%s) %s\n", d.Name, d.ID, d.Phone)
		fmt.Fprintf(w, "Route    %s, %d km\n", strings.Join(r.Route, " -> "), r.Distance)
	}
	return nil
}

func requireArg(c *cli.Context, name string) (string, error) {
	if c.NArg() < 1 || strings.TrimSpace(c.Args().First()) == "" {
		return "", fmt.Errorf("missing argument <%s>", name)
	}
	return c.Args().First(), nil
}
