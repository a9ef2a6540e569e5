// Package cli implements the fdsnws-query command line tool.
package cli

import (
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/fdsnws-client/internal/config"
	"github.com/mohammed-shakir/fdsnws-client/internal/httpclient"
	"github.com/mohammed-shakir/fdsnws-client/internal/logger"
	"github.com/mohammed-shakir/fdsnws-client/pkg/fdsnws"
)

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type globals struct {
	url      string
	timeout  time.Duration
	logLevel string
	pretty   bool
}

func NewRootCmd() *cobra.Command {
	g := &globals{}
	def := config.Defaults()
	if v := os.Getenv("FDSNWS_URL"); v != "" {
		def.FDSNWSURL = v
	}

	cmd := &cobra.Command{
		Use:          "fdsnws-query",
		Short:        "Query an FDSNWS station service",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&g.url, "url", def.FDSNWSURL, "FDSNWS base URL (env FDSNWS_URL)")
	cmd.PersistentFlags().DurationVar(&g.timeout, "timeout", def.HTTPTimeout, "request timeout")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level written to stderr")
	cmd.PersistentFlags().BoolVar(&g.pretty, "pretty", false, "indent JSON output")

	cmd.AddCommand(versionCmd(g), networkCmd(g), stationsCmd(g), invalidateCmd())
	return cmd
}

func (g *globals) client(cmd *cobra.Command) *fdsnws.Client {
	zl := logger.Build(logger.Config{Level: g.logLevel, Console: true, Component: "fdsnws-query"}, cmd.ErrOrStderr())
	return fdsnws.New(g.url,
		fdsnws.WithHTTPClient(httpclient.New(httpclient.Config{Timeout: g.timeout})),
		fdsnws.WithLogger(logger.NewSlog(&zl)),
	)
}

func (g *globals) print(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if g.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

