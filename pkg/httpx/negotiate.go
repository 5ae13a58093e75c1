package httpx

import (
	"mime"
	"net/http"
	"strings"
)

// Acceptable rejects a request with 406 unless its Accept header allows one
// of mimes. A missing Accept header accepts anything.
func Acceptable(mimes ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accept := r.Header.Values("Accept")
			if len(accept) == 0 || accepts(strings.Join(accept, ","), mimes) {
				next.ServeHTTP(w, r)
				return
			}
			WriteError(w, http.StatusNotAcceptable, "not_acceptable",
				"response can only be "+strings.Join(mimes, " or "))
		})
	}
}

func accepts(header string, offers []string) bool {
	for _, part := range strings.Split(header, ",") {
		mt, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if q, ok := params["q"]; ok && strings.Trim(q, "0.") == "" {
			continue // q=0 means "not this one"
		}
		for _, offer := range offers {
			if matchMediaType(mt, offer) {
				return true
			}
		}
	}
	return false
}

func matchMediaType(pattern, offer string) bool {
	if pattern == "*/*" || pattern == offer {
		return true
	}
	prefix, ok := strings.CutSuffix(pattern, "/*")
	return ok && strings.HasPrefix(offer, prefix+"/")
}

// ResponseMimetype sets the Content-Type of every response written by next.
func ResponseMimetype(mimetype string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", mimetype)
			next.ServeHTTP(w, r)
		})
	}
}

// RequireQuery rejects a request with 400 when one of keys is absent from
// the query string. Empty values pass; handlers decide what they mean.
func RequireQuery(keys ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			var missing []string
			for _, k := range keys {
				if !q.Has(k) {
					missing = append(missing, k)
				}
			}
			if len(missing) > 0 {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"missing query parameter: "+strings.Join(missing, ", "))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
