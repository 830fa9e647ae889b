package ingest

// Aggregate counts outcomes in details. The slice is kept as is.
func Aggregate(details []FileResult) BatchResult {
	success := 0
	for _, d := range details {
		if d.Succeeded() {
			success++
		}
	}
	if details == nil {
		details = []FileResult{}
	}
	return BatchResult{
		SuccessCount: success,
		FailedCount:  len(details) - success,
		Details:      details,
	}
}
