// Package binder decodes HTTP request data into Go structs.
//
// Three binders are provided:
//
//   - JSON(): decodes an application/json body, bounded by DefaultMaxJSONSize
//   - Query(): fills fields tagged `query:"name"` from the URL query
//   - Path(extractor): fills fields tagged `path:"name"` from router parameters
//
// Binders compose; handler.Wrap applies them in order:
//
//	type UpdateStatusRequest struct {
//	    ID     uuid.UUID `path:"id" json:"-"`
//	    Status string    `json:"status"`
//	}
//
//	r.Put("/{id}/status", handler.Wrap(updateStatus,
//	    handler.WithBinders[handler.Context, UpdateStatusRequest](
//	        binder.Path(chi.URLParam),
//	        binder.JSON(),
//	    ),
//	))
//
// Query and path fields accept basic kinds, pointers, slices and any type
// implementing encoding.TextUnmarshaler (uuid.UUID, account.Role).
//
// Every failure wraps one of the package errors, so error handlers can map
// them with errors.Is.
package binder
