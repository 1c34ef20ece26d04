package hirectl

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// promptToken reads an access token from the terminal without echo.
func promptToken(cmd *cobra.Command) (string, error) {
	w := cmd.ErrOrStderr()
	if _, err := fmt.Fprint(w, "Access token: "); err != nil {
		return "", err
	}
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", fmt.Errorf("empty access token")
	}
	return tok, nil
}
