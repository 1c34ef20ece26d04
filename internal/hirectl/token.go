package hirectl

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/server/auth"
	"github.com/spf13/cobra"
)

func (a *app) tokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Access token helpers",
	}

	var (
		subject string
		role    string
		secret  string
		ttl     time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign an access token with the server's shared secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv(EnvSecret)
			}
			if secret == "" {
				return fmt.Errorf("--secret or $%s is required", EnvSecret)
			}
			tok, err := auth.GenerateToken(subject, auth.Role(role), []byte(secret), ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	f := issue.Flags()
	f.StringVar(&subject, "subject", "", "principal subject")
	f.StringVar(&role, "role", string(auth.RoleApplicant), "owner, oracle or applicant")
	f.StringVar(&secret, "secret", "", "signing secret (default $"+EnvSecret+")")
	f.DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = issue.MarkFlagRequired("subject")

	cmd.AddCommand(issue)
	return cmd
}
