package hirectl

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/hirectl/receipts"
	gs "github.com/dmitrijs2005/hireledger/internal/server/grpc"
	"github.com/spf13/cobra"
)

func (a *app) applyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Submit and manage applications",
	}

	submit := &cobra.Command{
		Use:   "submit ADVERT_ID IDENTIFIER",
		Short: "Submit an application and keep a local receipt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAdvertID(args[0])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				r, err := c.SubmitApplication(ctx, id, args[1])
				if err != nil {
					return err
				}
				if err := a.recordSubmission(ctx, id, args[1], r); err != nil {
					return err
				}
				return a.print(cmd, r)
			})
		},
	}

	get := &cobra.Command{
		Use:   "get TOKEN_ID",
		Short: "Show an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenID, err := parseTokenID(args[0])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				r, err := c.GetApplication(ctx, tokenID)
				if err != nil {
					return err
				}
				return a.print(cmd, r)
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove TOKEN_ID IDENTIFIER",
		Short: "Withdraw an application and burn its token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenID, err := parseTokenID(args[0])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				if err := c.RemoveApplication(ctx, tokenID, args[1]); err != nil {
					return err
				}
				store, err := a.openReceipts(ctx)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.ForgetSubmission(ctx, tokenID); err != nil {
					return err
				}
				return a.print(cmd, map[string]any{"removed": tokenID})
			})
		},
	}

	hash := &cobra.Command{
		Use:   "hash IDENTIFIER",
		Short: "Show the integrity hash captured for an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				r, err := c.CapturedHash(ctx, args[0])
				if err != nil {
					return err
				}
				return a.print(cmd, r)
			})
		},
	}

	list := &cobra.Command{
		Use:   "receipts",
		Short: "List applications submitted from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openReceipts(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			subs, err := store.Submissions(cmd.Context())
			if err != nil {
				return err
			}
			if subs == nil {
				subs = []receipts.Submission{}
			}
			return a.print(cmd, subs)
		},
	}

	cmd.AddCommand(submit, get, remove, hash, list)
	return cmd
}

func (a *app) recordSubmission(ctx context.Context, advertID int64, identifier string, r *gs.SubmissionReply) error {
	store, err := a.openReceipts(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordSubmission(ctx, receipts.Submission{
		TokenID:    r.Application.TokenID,
		AdvertID:   advertID,
		Identifier: identifier,
		Commitment: r.Commitment,
	})
}
