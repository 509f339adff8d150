package handlers

import (
	"net/http"
	"slices"

	"github.com/ghuser/unitprice/pkg/errhttp"
	"github.com/ghuser/unitprice/pkg/httpx"
	"github.com/ghuser/unitprice/pkg/logger"
	appsvcs "github.com/ghuser/unitprice/services/shell/application/services"
	"github.com/ghuser/unitprice/services/shell/domain/models"
)

// SourceHeader reports whether a shell response came from the network, the
// exact cache entry or the cached root document.
const SourceHeader = "X-Shell-Source"

// InterceptHandler serves shell GET requests through the offline cache worker.
type InterceptHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewInterceptHandler returns an InterceptHandler backed by the given services.
func NewInterceptHandler(svc *appsvcs.Services, log logger.Logger) *InterceptHandler {
	return &InterceptHandler{svc: svc, log: log}
}

// Middleware answers GET requests from the worker and passes every other
// method to next untouched.
func (h *InterceptHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := models.RequestKey(r.URL)
		entry, source, err := h.svc.Worker.Fetch(r.Context(), key)
		if err != nil {
			h.log.WarnContext(r.Context(), "shell asset unavailable", "key", key, "error", err)
			errhttp.WriteError(w, err)
			return
		}

		for k, v := range entry.Header {
			w.Header()[k] = slices.Clone(v)
		}
		w.Header().Set(SourceHeader, string(source))
		w.WriteHeader(entry.Status)
		_, _ = w.Write(entry.Body)
	})
}

// MethodNotAllowed is the plain handler behind the shell routes. Only GET is
// served, and that never reaches it.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method not allowed")
}
