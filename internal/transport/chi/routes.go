package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// SearchParams are the query parameters of GET /api/search.
type SearchParams struct {
	Q     *string
	Limit *int
}

// PreviewParams are the query parameters of GET /api/screenshots/{id}/preview.
type PreviewParams struct {
	Q *string
}

// ListSearchesParams are the query parameters of GET /api/searches.
type ListSearchesParams struct {
	Limit *int
}

// GetUsageParams are the query parameters of GET /api/usage.
type GetUsageParams struct {
	Period *string
}

// ServerInterface is the set of API operations.
type ServerInterface interface {
	// GET /api/search
	Search(w http.ResponseWriter, r *http.Request, params SearchParams)
	// POST /api/upload
	Upload(w http.ResponseWriter, r *http.Request)
	// GET /api/screenshots
	ListScreenshots(w http.ResponseWriter, r *http.Request)
	// GET /api/screenshots/{id}
	GetScreenshot(w http.ResponseWriter, r *http.Request, id string)
	// DELETE /api/screenshots/{id}
	DeleteScreenshot(w http.ResponseWriter, r *http.Request, id string)
	// GET /api/screenshots/{id}/preview
	PreviewScreenshot(w http.ResponseWriter, r *http.Request, id string, params PreviewParams)
	// GET /api/files/{id}
	GetFile(w http.ResponseWriter, r *http.Request, id string)
	// GET /api/stats
	GetStats(w http.ResponseWriter, r *http.Request)
	// GET /api/searches
	ListSearches(w http.ResponseWriter, r *http.Request, params ListSearchesParams)
	// GET /api/usage
	GetUsage(w http.ResponseWriter, r *http.Request, params GetUsageParams)
	// GET /health
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// GET /metrics
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// MiddlewareFunc wraps a single operation handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper binds request parameters and dispatches to the handler.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// Search binds q and limit.
func (siw *ServerInterfaceWrapper) Search(w http.ResponseWriter, r *http.Request) {
	var params SearchParams

	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &params.Q); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.Search(w, r, params)
	})
}

// Upload dispatches the multipart upload.
func (siw *ServerInterfaceWrapper) Upload(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Upload)
}

// ListScreenshots dispatches the library listing.
func (siw *ServerInterfaceWrapper) ListScreenshots(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ListScreenshots)
}

// GetScreenshot binds the id path parameter.
func (siw *ServerInterfaceWrapper) GetScreenshot(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetScreenshot(w, r, id)
	})
}

// DeleteScreenshot binds the id path parameter.
func (siw *ServerInterfaceWrapper) DeleteScreenshot(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteScreenshot(w, r, id)
	})
}

// PreviewScreenshot binds id and q.
func (siw *ServerInterfaceWrapper) PreviewScreenshot(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	var params PreviewParams
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &params.Q); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PreviewScreenshot(w, r, id, params)
	})
}

// GetFile binds the id path parameter.
func (siw *ServerInterfaceWrapper) GetFile(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetFile(w, r, id)
	})
}

// GetStats dispatches the stats request.
func (siw *ServerInterfaceWrapper) GetStats(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetStats)
}

// ListSearches binds limit.
func (siw *ServerInterfaceWrapper) ListSearches(w http.ResponseWriter, r *http.Request) {
	var params ListSearchesParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListSearches(w, r, params)
	})
}

// GetUsage binds period.
func (siw *ServerInterfaceWrapper) GetUsage(w http.ResponseWriter, r *http.Request) {
	var params GetUsageParams
	if err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &params.Period); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "period", Err: err})
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetUsage(w, r, params)
	})
}

// HealthCheck dispatches the health probe.
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthCheck)
}

// Metrics dispatches the Prometheus scrape.
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Metrics)
}

func (siw *ServerInterfaceWrapper) bindID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return "", false
	}
	return id, true
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	var handler http.Handler = h
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts every operation of si on a chi router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	base := options.BaseURL
	r.Group(func(r chi.Router) {
		r.Get(base+"/api/search", wrapper.Search)
		r.Post(base+"/api/upload", wrapper.Upload)
		r.Get(base+"/api/screenshots", wrapper.ListScreenshots)
		r.Get(base+"/api/screenshots/{id}", wrapper.GetScreenshot)
		r.Delete(base+"/api/screenshots/{id}", wrapper.DeleteScreenshot)
		r.Get(base+"/api/screenshots/{id}/preview", wrapper.PreviewScreenshot)
		r.Get(base+"/api/files/{id}", wrapper.GetFile)
		r.Get(base+"/api/stats", wrapper.GetStats)
		r.Get(base+"/api/searches", wrapper.ListSearches)
		r.Get(base+"/api/usage", wrapper.GetUsage)
		r.Get(base+"/health", wrapper.HealthCheck)
		r.Get(base+"/metrics", wrapper.Metrics)
	})
	return r
}
