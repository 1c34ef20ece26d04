package hirectl

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) advertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advert",
		Short: "Manage job adverts",
	}

	var (
		days uint32
		link string
	)
	create := &cobra.Command{
		Use:   "create ADVERT_ID",
		Short: "Open an advert for submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAdvertID(args[0])
			if err != nil {
				return err
			}
			if link == "" {
				return fmt.Errorf("--link is required")
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				r, err := c.CreateAdvert(ctx, id, days, link)
				if err != nil {
					return err
				}
				return a.print(cmd, r)
			})
		},
	}
	create.Flags().Uint32Var(&days, "days", 30, "submission period in days")
	create.Flags().StringVar(&link, "link", "", "reference link to the advert text")

	var threshold uint16
	shortlist := &cobra.Command{
		Use:   "shortlist ADVERT_ID",
		Short: "Compute the applications scoring at or above --threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAdvertID(args[0])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				r, err := c.ComputeTopApplications(ctx, id, threshold)
				if err != nil {
					return err
				}
				return a.print(cmd, r)
			})
		},
	}
	shortlist.Flags().Uint16Var(&threshold, "threshold", 0, "minimum score")

	cmd.AddCommand(
		create,
		a.advertLookup("get", "Show an advert and its stage", func(ctx context.Context, c API, id int64) (any, error) {
			return c.GetAdvert(ctx, id)
		}),
		a.advertLookup("close", "Close submissions and run verification", func(ctx context.Context, c API, id int64) (any, error) {
			return c.CloseSubmission(ctx, id)
		}),
		a.advertLookup("apps", "List application tokens under an advert", func(ctx context.Context, c API, id int64) (any, error) {
			return c.ApplicationsForAdvert(ctx, id)
		}),
		shortlist,
		a.advertLookup("qualified", "Show the last computed shortlist", func(ctx context.Context, c API, id int64) (any, error) {
			return c.QualifiedApplications(ctx, id)
		}),
	)
	return cmd
}

func (a *app) advertLookup(use, short string, call func(ctx context.Context, c API, id int64) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ADVERT_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAdvertID(args[0])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				r, err := call(ctx, c, id)
				if err != nil {
					return err
				}
				return a.print(cmd, r)
			})
		},
	}
}
