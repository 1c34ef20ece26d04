package hirectl

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/calendar"
	"github.com/dmitrijs2005/hireledger/internal/hirectl/receipts"
	"github.com/spf13/cobra"
)

func (a *app) escrowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escrow",
		Short: "Commit and reveal second parts",
	}

	var activation uint32
	submit := &cobra.Command{
		Use:   "submit COMMITMENT REF",
		Short: "Escrow a ciphertext reference under a commitment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			commitment, err := parseCommitment(args[0])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				date := activation
				if date == 0 {
					date = calendar.FromTime(a.opts.now())
				}
				r, err := c.SubmitSecondPart(ctx, commitment, args[1], date)
				if err != nil {
					return err
				}

				store, err := a.openReceipts(ctx)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.RecordEscrow(ctx, receipts.Escrow{
					Commitment: commitment,
					Ref:        args[1],
					Activation: date,
				}); err != nil {
					return err
				}
				return a.print(cmd, r)
			})
		},
	}
	submit.Flags().Uint32Var(&activation, "activation", 0, "activation date as YYYYMMDD (default today)")

	access := &cobra.Command{
		Use:   "access COMMITMENT",
		Short: "Reveal the escrowed reference inside its window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commitment, err := parseCommitment(args[0])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				r, err := c.RequestAccess(ctx, commitment)
				if err != nil {
					return err
				}
				return a.print(cmd, r)
			})
		},
	}

	presign := &cobra.Command{
		Use:   "presign COMMITMENT",
		Short: "Print a time-limited download URL for an escrowed object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commitment, err := parseCommitment(args[0])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				r, err := c.PresignAccess(ctx, commitment)
				if err != nil {
					return err
				}
				return a.print(cmd, r)
			})
		},
	}

	pull := &cobra.Command{
		Use:   "pull ADVERT_ID",
		Short: "Reveal every second part under a verified advert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAdvertID(args[0])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				r, err := c.GetAllSecondParts(ctx, id)
				if err != nil {
					return err
				}
				return a.print(cmd, r)
			})
		},
	}

	list := &cobra.Command{
		Use:   "receipts",
		Short: "List second parts escrowed from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openReceipts(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			escrows, err := store.Escrows(cmd.Context())
			if err != nil {
				return err
			}
			if escrows == nil {
				escrows = []receipts.Escrow{}
			}
			return a.print(cmd, escrows)
		},
	}

	cmd.AddCommand(submit, access, presign, pull, list)
	return cmd
}
