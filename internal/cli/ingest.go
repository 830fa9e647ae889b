package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/docvault/pkg/ingest"
	"github.com/dmitrymomot/docvault/pkg/uniquename"
)

// Output formats of the ingest command.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

func (a *app) ingestCmd() *cobra.Command {
	var (
		dir    string
		output string
	)

	cmd := &cobra.Command{
		Use:   "ingest [flags] FILE...",
		Short: "Store local files through the ingestion pipeline",
		Long: `Store local files exactly as the upload endpoint would and print the batch result.

The command fails when no file could be stored.

Examples:
  docvault ingest report.pdf notes.md
  docvault ingest --dir contracts ./scans/*.pdf
  docvault ingest --output yaml draft.docx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			format := strings.ToLower(output)
			if format != OutputJSON && format != OutputYAML {
				return fmt.Errorf("%w: %q (want json or yaml)", ErrUnknownOutputFormat, output)
			}

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

			pipeline := ingest.New(cfg.Ingest, storage, uniquename.New(),
				ingest.WithLogger(log),
				ingest.WithNameAttempts(cfg.NameAttempts),
			)

			req := ingest.Request{Items: localItems(args)}
			if cmd.Flags().Changed("dir") {
				req.Directory = &dir
			}

			result, err := pipeline.Ingest(ctx, req)
			if err != nil {
				return err
			}
			if err := writeResult(cmd.OutOrStdout(), format, result); err != nil {
				return err
			}
			if result.AllFailed() {
				return fmt.Errorf("%w: %d of %d failed", ErrNothingStored, result.FailedCount, len(result.Details))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "destination directory for every file (default: each file's name)")
	cmd.Flags().StringVarP(&output, "output", "o", OutputJSON, "result format: json or yaml")
	return cmd
}

// localItems turns paths into pipeline items named by their base name.
func localItems(paths []string) []ingest.Item {
	items := make([]ingest.Item, 0, len(paths))
	for _, p := range paths {
		items = append(items, ingest.Item{
			Filename: filepath.Base(p),
			Open: func() (io.ReadCloser, error) {
				return os.Open(p)
			},
		})
	}
	return items
}

func writeResult(w io.Writer, format string, result *ingest.BatchResult) error {
	switch format {
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return nil
	}
}
