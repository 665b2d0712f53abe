package binder

import "net/http"

// Query creates a URL query binder for fields tagged `query:"name"`.
//
//	type ListRequest struct {
//	    Role   string `query:"role"`
//	    Limit  int    `query:"limit"`
//	    Offset int    `query:"offset"`
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", func(name string) []string {
			return r.URL.Query()[name]
		}, ErrFailedToParseQuery)
	}
}
