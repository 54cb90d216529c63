package profiling

import (
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/cellnetwork/celld/infrastructure/logger"
	"github.com/cellnetwork/celld/util/panics"
	"github.com/pkg/errors"
)

// NewHandler returns a handler serving the pprof endpoints under
// /debug/pprof, redirecting every other path there.
func NewHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/", http.RedirectHandler("/debug/pprof/", http.StatusSeeOther))
	return mux
}

// Start starts the profiling server on the given port. The returned
// server is shut down by the caller.
func Start(port string, log *logger.Logger) *http.Server {
	spawn := panics.GoroutineWrapperFunc(log)
	server := &http.Server{
		Addr:              net.JoinHostPort("", port),
		Handler:           NewHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	spawn("profiling.Start", func() {
		log.Infof("Profile server listening on %s", server.Addr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err)
		}
	})
	return server
}
