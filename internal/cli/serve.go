package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stageflow/internal/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		options optionFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

Endpoints:
  GET  /healthz            liveness probe
  POST /v1/layout          stage records to layout JSON
  POST /v1/render?format=  stage records to json, dot, svg or png
  POST /v1/select          stage id to stage name

Layout flags and --config set the defaults for requests that carry no
"options" object. The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options.resolve(cmd)
			if err != nil {
				return err
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			srv := server.New(c.newRunner(), c.Logger, opts)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	options.register(cmd)

	return cmd
}
