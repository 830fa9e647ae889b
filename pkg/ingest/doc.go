// Package ingest implements batch document ingestion.
//
// A Pipeline takes a Request holding one or more uploaded items and, for each
// item in order, validates its extension against the configured allow-list,
// resolves and sanitizes a destination directory, asks a Namer for a stored
// name, streams the bytes into file.Storage and probes the stored size. Every
// item yields exactly one FileResult; a failing item never stops the batch.
//
//	settings, err := config.Load[ingest.Settings]()
//	if err != nil {
//		return err
//	}
//	store, err := file.NewLocalStorage(settings.StorageRoot)
//	if err != nil {
//		return err
//	}
//	pipeline := ingest.New(settings, store, uniquename.New(), ingest.WithLogger(log))
//
//	result, err := pipeline.Ingest(ctx, ingest.Request{Items: items})
//	if errors.Is(err, ingest.ErrNoFiles) {
//		// nothing was submitted
//	}
//
// The only error Ingest returns is ErrNoFiles. Per-item problems are reported
// through FileResult.Error and can be inspected with ItemError when calling
// the pipeline's per-item step in tests.
package ingest
