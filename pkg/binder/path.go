package binder

import "net/http"

// Path creates a path parameter binder for fields tagged `path:"name"`.
// extractor is usually chi.URLParam.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "path", func(name string) []string {
			if extractor == nil {
				return nil
			}
			if value := extractor(r, name); value != "" {
				return []string{value}
			}
			return nil
		}, ErrFailedToParsePath)
	}
}
