package httpapi

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/goliatone/go-bizdash/components/dashboard"
)

// Headers read by DefaultViewerResolver. Authentication happens upstream;
// these are set by the host's auth proxy.
const (
	HeaderUserID    = "X-User-ID"
	HeaderCurrency  = "X-Currency"
	HeaderRequestID = "X-Request-ID"
)

// ViewerResolver extracts the viewer from a request.
type ViewerResolver func(r *http.Request) dashboard.ViewerContext

// DefaultViewerResolver reads the viewer from headers. The locale comes
// from Accept-Language.
func DefaultViewerResolver(r *http.Request) dashboard.ViewerContext {
	return dashboard.ViewerContext{
		UserID:   strings.TrimSpace(r.Header.Get(HeaderUserID)),
		Locale:   primaryLanguage(r.Header.Get("Accept-Language")),
		Currency: strings.ToUpper(strings.TrimSpace(r.Header.Get(HeaderCurrency))),
	}
}

// ViewerMiddleware stores the resolved viewer and a request id on the
// request context.
func ViewerMiddleware(resolve ViewerResolver) func(http.Handler) http.Handler {
	if resolve == nil {
		resolve = DefaultViewerResolver
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := dashboard.ContextWithRequest(r.Context(), dashboard.RequestContext{
				RequestID: r.Header.Get(HeaderRequestID),
				Viewer:    resolve(r),
			})
			meta, _ := dashboard.RequestFrom(ctx)
			w.Header().Set(HeaderRequestID, meta.RequestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func viewerFrom(r *http.Request) dashboard.ViewerContext {
	if meta, ok := dashboard.RequestFrom(r.Context()); ok {
		return meta.Viewer
	}
	return DefaultViewerResolver(r)
}

// primaryLanguage returns the highest weighted tag of an Accept-Language
// header.
func primaryLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}
