package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/edp1096/spiceplot/pkg/library"
	"github.com/edp1096/spiceplot/pkg/simulator"
)

// Simulator is the part of simulator.Service the handlers use.
type Simulator interface {
	Simulate(ctx context.Context, text string) (*simulator.Response, error)
}

type Server struct {
	sim    Simulator
	store  *library.Store
	origin string
	now    func() time.Time
}

func New(sim Simulator, store *library.Store, origin string) *Server {
	if origin == "" {
		origin = "*"
	}
	return &Server{sim: sim, store: store, origin: origin, now: time.Now}
}

// Handler returns the routes wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /simulate", s.handleSimulate)
	mux.HandleFunc("POST /plot", s.handlePlot)
	mux.HandleFunc("GET /files", s.handleListFiles)
	mux.HandleFunc("GET /files/{name}", s.handleReadFile)
	mux.HandleFunc("POST /files/{name}", s.handleWriteFile)
	mux.HandleFunc("POST /files/import", s.handleImport)

	return logRequests(s.cors(mux))
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("server: listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// maxBody bounds request bodies.
const maxBody = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
