package handler

import "net/http"

type redirectResponse struct {
	url  string
	code int
}

func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	http.Redirect(w, req, r.url, r.code)
	return nil
}

// Redirect responds with 302 Found.
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusFound}
}

// RedirectWithCode accepts any 3xx code; anything else becomes 302.
func RedirectWithCode(url string, code int) Response {
	if code < http.StatusMultipleChoices || code > http.StatusPermanentRedirect {
		code = http.StatusFound
	}
	return redirectResponse{url: url, code: code}
}
