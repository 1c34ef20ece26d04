// Package hirectl implements the hirectl command-line client.
//
// Every command dials the hiring service over gRPC, prints the reply as
// JSON or YAML, and exits. Applicant-side commands also keep local receipts
// of submitted tokens and escrowed references.
package hirectl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/dmitrijs2005/hireledger/internal/filex"
	"github.com/dmitrijs2005/hireledger/internal/hirectl/receipts"
	gs "github.com/dmitrijs2005/hireledger/internal/server/grpc"
	"github.com/spf13/cobra"
)

const (
	programName    = "hirectl"
	defaultAddress = "localhost:50051"

	EnvToken  = "HIRELEDGER_TOKEN"
	EnvSecret = "HIRELEDGER_JWT_SECRET"
)

// API is the subset of the gRPC client the commands use.
type API interface {
	Ping(ctx context.Context) (*gs.PingReply, error)
	CreateAdvert(ctx context.Context, advertID int64, periodDays uint32, referenceLink string) (*gs.AdvertReply, error)
	GetAdvert(ctx context.Context, advertID int64) (*gs.AdvertReply, error)
	CloseSubmission(ctx context.Context, advertID int64) (*gs.CloseSubmissionReply, error)
	ApplicationsForAdvert(ctx context.Context, advertID int64) (*gs.TokenIDsReply, error)
	ComputeTopApplications(ctx context.Context, advertID int64, threshold uint16) (*gs.ShortlistReply, error)
	QualifiedApplications(ctx context.Context, advertID int64) (*gs.ShortlistReply, error)
	SubmitApplication(ctx context.Context, advertID int64, identifier string) (*gs.SubmissionReply, error)
	GetApplication(ctx context.Context, tokenID uint64) (*gs.ApplicationReply, error)
	RemoveApplication(ctx context.Context, tokenID uint64, identifier string) error
	CapturedHash(ctx context.Context, identifier string) (*gs.HashReply, error)
	SubmitSecondPart(ctx context.Context, commitment digest.Hash, ref string, activationDate uint32) (*gs.EscrowReply, error)
	RequestAccess(ctx context.Context, commitment digest.Hash) (*gs.RefReply, error)
	GetAllSecondParts(ctx context.Context, advertID int64) (*gs.SecondPartsReply, error)
	PrepareUpload(ctx context.Context) (*gs.UploadReply, error)
	PresignAccess(ctx context.Context, commitment digest.Hash) (*gs.URLReply, error)
	RecordPairScore(ctx context.Context, a, b string, score uint16) error
	ApplyScore(ctx context.Context, tokenID uint64, score uint16) error
	CheckPairScore(ctx context.Context, advertID int64, tokenID uint64, a, b string) (*gs.ScoreReply, error)
	Close() error
}

// dial is a test seam for gs.Dial.
var dial = func(address, token string) (API, error) {
	return gs.Dial(address, token)
}

type options struct {
	address  string
	token    string
	askToken bool
	dataDir  string
	output   string
	timeout  time.Duration
	now      func() time.Time
}

type app struct {
	opts *options
}

// NewRootCommand builds the command tree on the given streams.
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{opts: &options{now: time.Now}}

	root := &cobra.Command{
		Use:           programName,
		Short:         "Client for the hireledger hiring service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.opts.token == "" {
				a.opts.token = os.Getenv(EnvToken)
			}
			if a.opts.askToken {
				tok, err := promptToken(cmd)
				if err != nil {
					return err
				}
				a.opts.token = tok
			}
			switch a.opts.output {
			case "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unknown output format %q", a.opts.output)
			}
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.opts.address, "addr", "a", defaultAddress, "gRPC server address")
	pf.StringVar(&a.opts.token, "token", "", "access token (default $"+EnvToken+")")
	pf.BoolVar(&a.opts.askToken, "ask-token", false, "prompt for the access token without echo")
	pf.StringVar(&a.opts.dataDir, "data-dir", "", "directory for local receipts (default user config dir)")
	pf.StringVarP(&a.opts.output, "output", "o", "json", "output format: json or yaml")
	pf.DurationVar(&a.opts.timeout, "timeout", 10*time.Second, "per-command timeout")

	root.AddCommand(
		a.pingCommand(),
		a.tokenCommand(),
		a.advertCommand(),
		a.applyCommand(),
		a.escrowCommand(),
		a.scoreCommand(),
	)
	return root
}

// Execute runs the CLI against the process streams.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
}

// withClient dials, bounds the call by --timeout, and always closes the connection.
func (a *app) withClient(cmd *cobra.Command, fn func(ctx context.Context, c API) error) error {
	c, err := dial(a.opts.address, a.opts.token)
	if err != nil {
		return fmt.Errorf("dial %s: %w", a.opts.address, err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.opts.timeout)
	defer cancel()
	return fn(ctx, c)
}

func (a *app) openReceipts(ctx context.Context) (*receipts.Store, error) {
	dir, err := filex.EnsureDir(a.opts.dataDir, programName)
	if err != nil {
		return nil, err
	}
	return receipts.Open(ctx, filepath.Join(dir, "receipts.db"))
}

func (a *app) pingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server and its stores are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c API) error {
				r, err := c.Ping(ctx)
				if err != nil {
					return err
				}
				return a.print(cmd, r)
			})
		},
	}
}
