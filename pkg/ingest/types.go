package ingest

import "io"

// Status is the outcome of a single item.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Item is one uploaded file. Open is called once per save attempt and must
// return the content from the start every time; the pipeline closes each
// returned stream.
type Item struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// Request is a batch of items with an optional directory override applied to
// every item. A nil or empty Directory means no override.
type Request struct {
	Items     []Item
	Directory *string
}

// FileResult reports what happened to one item. On success SavedPath,
// Directory and Size are set; on failure only Error is.
type FileResult struct {
	OriginalName string `json:"original_name" yaml:"original_name"`
	Status       Status `json:"status" yaml:"status"`
	SavedPath    string `json:"saved_path,omitempty" yaml:"saved_path,omitempty"`
	Directory    string `json:"directory,omitempty" yaml:"directory,omitempty"`
	Size         *int64 `json:"size,omitempty" yaml:"size,omitempty"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded reports whether the item was stored.
func (r FileResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// BatchResult is the full accounting of a request, details in input order.
type BatchResult struct {
	SuccessCount int          `json:"success_count" yaml:"success_count"`
	FailedCount  int          `json:"failed_count" yaml:"failed_count"`
	Details      []FileResult `json:"details" yaml:"details"`
}

// AllFailed reports whether no item in the batch was stored.
func (b BatchResult) AllFailed() bool {
	return b.SuccessCount == 0
}

func successResult(original, savedPath, dir string, size int64) FileResult {
	return FileResult{
		OriginalName: original,
		Status:       StatusSuccess,
		SavedPath:    savedPath,
		Directory:    dir,
		Size:         &size,
	}
}

func failedResult(original string, err error) FileResult {
	return FileResult{
		OriginalName: original,
		Status:       StatusFailed,
		Error:        err.Error(),
	}
}
