// Package handler provides type-safe HTTP request handling.
//
// Handlers are generic functions that receive a bound request struct and
// return a Response. Wrap turns them into plain http.HandlerFuncs, running
// binders first and routing every binding or rendering error through one
// ErrorHandler:
//
//	type UploadRequest struct {
//		Files   []*multipart.FileHeader `file:"files"`
//		DirName *string                 `query:"dir_name"`
//	}
//
//	func upload(ctx handler.Context, req UploadRequest) handler.Response {
//		if len(req.Files) == 0 {
//			return handler.JSONError(handler.NewHTTPError(http.StatusBadRequest, "no_files"))
//		}
//		return handler.JSON(result, handler.WithJSONStatus(http.StatusMultiStatus), handler.WithoutEnvelope())
//	}
//
//	r.Post("/multi/", handler.Wrap(upload,
//		handler.WithBinders[handler.Context, UploadRequest](binder.Form(), binder.Query()),
//		handler.WithErrorHandler[handler.Context, UploadRequest](handler.NewErrorHandler(log)),
//	))
//
// # Responses
//
//	handler.JSON(data)                                  // 200 OK, {"data": ...}
//	handler.JSON(data, handler.WithJSONStatus(201))     // custom status
//	handler.JSON(data, handler.WithoutEnvelope())       // body is data itself
//	handler.JSONError(err)                              // {"error": {"code", "message"}}
//
// # Errors
//
// HTTPError carries a status code and a stable machine-readable key. Any error
// wrapping an HTTPError is answered with that status; everything else becomes
// 500 internal_server_error without leaking the cause to the client.
package handler
