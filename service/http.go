package service

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/storage"
	"github.com/Comcast/shapes/util"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jsccast/yaml"
	"github.com/pkg/errors"
	"golang.org/x/net/netutil"
)

// MaxBody limits the size of request bodies.
var MaxBody int64 = 1 << 20

// Router makes the HTTP API, which includes the WebSocket endpoint
// at /ws.
func (s *Service) Router(ctx context.Context) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/cases", s.httpList).Methods("GET")
	r.HandleFunc("/cases/{name}", s.httpPut).Methods("PUT")
	r.HandleFunc("/cases/{name}", s.httpGet).Methods("GET")
	r.HandleFunc("/cases/{name}", s.httpRem).Methods("DELETE")
	r.HandleFunc("/cases/{name}/eval", s.httpEval).Methods("POST")
	r.HandleFunc("/ws", s.WebSocketHandler(ctx))

	return r
}

// HTTPServer serves the Router until the context is done.
//
// At most maxConns connections are accepted at once (if maxConns is
// positive).
func (s *Service) HTTPServer(ctx context.Context, addr string, maxConns int) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}
	if 0 < maxConns {
		l = netutil.LimitListener(l, maxConns)
	}

	srv := &http.Server{
		Handler:        handlers.CombinedLoggingHandler(util.Logger, s.Router(ctx)),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		<-ctx.Done()
		util.Logger.Info().Str("addr", addr).Msg("HTTP server shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	util.Logger.Info().Str("addr", l.Addr().String()).Msg("HTTP server")

	if err = srv.Serve(l); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// status picks an HTTP status for an error from an operation.
func status(err error) int {
	var (
		notFound *CaseNotFound
		bad      *BadCase
		none     *core.NoMatchingPattern
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &bad), errors.Is(err, storage.ErrNoName):
		return http.StatusBadRequest
	case errors.As(err, &none):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Service) reply(w http.ResponseWriter, r *http.Request, op *Op) {
	rep, err := s.do(r.Context(), op)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status(err))
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		util.Logger.Warn().Err(err).Msg("HTTP reply")
	}
}

func badRequest(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(&Reply{Error: err.Error()})
}

// body reads the request body as YAML (or JSON).
func body(r *http.Request, x interface{}) error {
	bs, err := io.ReadAll(io.LimitReader(r.Body, MaxBody))
	if err != nil {
		return err
	}
	return yaml.Unmarshal(bs, x)
}

func (s *Service) httpList(w http.ResponseWriter, r *http.Request) {
	s.reply(w, r, &Op{List: true})
}

func (s *Service) httpGet(w http.ResponseWriter, r *http.Request) {
	s.reply(w, r, &Op{Get: mux.Vars(r)["name"]})
}

func (s *Service) httpRem(w http.ResponseWriter, r *http.Request) {
	s.reply(w, r, &Op{Rem: mux.Vars(r)["name"]})
}

func (s *Service) httpPut(w http.ResponseWriter, r *http.Request) {
	bs, err := io.ReadAll(io.LimitReader(r.Body, MaxBody))
	if err != nil {
		badRequest(w, err)
		return
	}
	spec, err := core.ParseCaseSpec(bs)
	if err != nil {
		badRequest(w, err)
		return
	}
	spec.Name = mux.Vars(r)["name"]
	s.reply(w, r, &Op{Put: spec})
}

func (s *Service) httpEval(w http.ResponseWriter, r *http.Request) {
	var e EvalOp
	if err := body(r, &e); err != nil {
		badRequest(w, err)
		return
	}
	e.Case = mux.Vars(r)["name"]
	s.reply(w, r, &Op{Id: r.Header.Get("X-Request-Id"), Eval: &e})
}
