// Package upload serves the batch upload API.
//
// POST /api/v1/files/multi/ accepts a multipart form with one or more "files"
// parts and an optional dir_name (query parameter or form field). Every file
// is run through the ingestion pipeline and the response lists one result per
// file in the order they were sent:
//
//	207 Multi-Status          at least one file was stored
//	422 Unprocessable Entity  every file failed, same body
//	400 Bad Request           no files, or a malformed form
//	413 Request Entity Too Large
//
// The body is not wrapped in the usual {"data": ...} envelope:
//
//	{"success_count":1,"failed_count":1,"details":[...]}
package upload
