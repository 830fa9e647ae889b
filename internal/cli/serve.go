package cli

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/docvault/modules/upload"
	"github.com/dmitrymomot/docvault/pkg/clientip"
	"github.com/dmitrymomot/docvault/pkg/file"
	"github.com/dmitrymomot/docvault/pkg/httpserver"
	"github.com/dmitrymomot/docvault/pkg/ingest"
	"github.com/dmitrymomot/docvault/pkg/logger"
	"github.com/dmitrymomot/docvault/pkg/requestid"
	"github.com/dmitrymomot/docvault/pkg/uniquename"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP upload service",
		Long: `Run the HTTP upload service.

Routes:
  POST /api/v1/files/multi/   multipart upload, repeated "files" field, optional dir_name
  GET  /health/live           liveness probe
  GET  /health/ready          readiness probe (storage reachable)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			log, closeLog, err := a.newLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			storage, err := newStorage(ctx, cfg)
			if err != nil {
				return err
			}

			log.InfoContext(ctx, "starting docvault",
				logger.Component("serve"),
				slog.String("storage_driver", cfg.StorageDriver),
				slog.String("storage_root", storage.Location("")),
				slog.String("allowed_extensions", cfg.Ingest.AllowedExtensions.String()),
			)

			srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
			return srv.Run(ctx, newRouter(cfg, storage, log))
		},
	}
}

// newRouter wires storage, pipeline and HTTP routes together.
func newRouter(cfg Config, storage file.Storage, log *slog.Logger) http.Handler {
	pipeline := ingest.New(cfg.Ingest, storage, uniquename.New(),
		ingest.WithLogger(log),
		ingest.WithNameAttempts(cfg.NameAttempts),
	)

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.Middleware(clientip.WithHeaders(cfg.ClientIPHeaders...)),
		middleware.Recoverer,
	)
	r.Mount("/", upload.Router(upload.RouterOptions{
		Files: upload.New(pipeline,
			upload.WithLogger(log),
			upload.WithMaxUploadSize(cfg.MaxUploadSize),
		),
		Health: httpserver.NewHealth(
			httpserver.WithPinger("storage", storage),
			httpserver.WithHealthLogger(log),
		),
	}))
	return r
}
