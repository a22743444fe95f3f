// Package commands implements growthctl, a terminal client for the
// growth_hub API.
package commands

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"growth_hub/internal/config"
)

// options are the persistent flags shared by every command.
type options struct {
	apiURL  string
	token   string
	quiet   bool
	http    *http.Client
}

// endpoint joins the API base URL and path.
func (o *options) endpoint(path string) string {
	return strings.TrimRight(o.apiURL, "/") + path
}

// Execute runs growthctl with the process arguments. An interrupt cancels
// the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCommand(os.Stdout, http.DefaultClient).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree writing results to out.
func NewRootCommand(out io.Writer, httpClient *http.Client) *cobra.Command {
	cfg := config.LoadClientConfig()
	opts := &options{http: httpClient}

	root := &cobra.Command{
		Use:           "growthctl",
		Short:         "Command line client for the growth_hub API",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.quiet {
				logrus.SetLevel(logrus.ErrorLevel)
			}
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&opts.apiURL, "api", cfg.APIURL, "growth_hub base URL (env GROWTH_API_URL)")
	root.PersistentFlags().StringVar(&opts.token, "token", cfg.Token, "bearer token (env GROWTH_TOKEN)")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "hide stream decoding warnings")

	root.AddCommand(loginCmd(opts), generateCmd(opts), typesCmd())
	return root
}
