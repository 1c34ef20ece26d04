package hirectl

import (
	"context"

	"github.com/spf13/cobra"
)

func (a *app) scoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Record and check scores",
	}

	pair := &cobra.Command{
		Use:   "pair IDENTIFIER_A IDENTIFIER_B SCORE",
		Short: "Record a similarity score between two identifiers (oracle)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := parseScore(args[2])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				if err := c.RecordPairScore(ctx, args[0], args[1], score); err != nil {
					return err
				}
				return a.print(cmd, map[string]any{"identifier_a": args[0], "identifier_b": args[1], "score": score})
			})
		},
	}

	apply := &cobra.Command{
		Use:   "apply TOKEN_ID SCORE",
		Short: "Set the score of an application (oracle)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenID, err := parseTokenID(args[0])
			if err != nil {
				return err
			}
			score, err := parseScore(args[1])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				if err := c.ApplyScore(ctx, tokenID, score); err != nil {
					return err
				}
				return a.print(cmd, map[string]any{"token_id": tokenID, "score": score})
			})
		},
	}

	check := &cobra.Command{
		Use:   "check ADVERT_ID TOKEN_ID IDENTIFIER_A IDENTIFIER_B",
		Short: "Read a recorded pair score once the advert is verified",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			advertID, err := parseAdvertID(args[0])
			if err != nil {
				return err
			}
			tokenID, err := parseTokenID(args[1])
			if err != nil {
				return err
			}
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				r, err := c.CheckPairScore(ctx, advertID, tokenID, args[2], args[3])
				if err != nil {
					return err
				}
				return a.print(cmd, r)
			})
		},
	}

	cmd.AddCommand(pair, apply, check)
	return cmd
}
