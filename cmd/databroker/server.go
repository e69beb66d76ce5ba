package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/authz"
	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/store"
	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/tokendecoder"
	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/log"
	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

var (
	errMissingBearerToken = errUnauthorized("server: missing bearer token")
	errExpiredToken       = errUnauthorized("server: token expired")
)

type errUnauthorized string

func (e errUnauthorized) Error() string { return string(e) }

// entryView is the JSON shape /debug/entries reports for one entry: a
// human-inspectable projection, not a wire protocol (the real gRPC/
// WebSocket surfaces are out of scope for this repository).
type entryView struct {
	ID          int32  `json:"id"`
	Path        string `json:"path"`
	DataType    string `json:"dataType"`
	EntryType   string `json:"entryType"`
	ChangeType  string `json:"changeType"`
	Value       string `json:"value"`
	Timestamp   string `json:"timestamp,omitempty"`
	HasActuator bool   `json:"hasActuatorTarget"`
}

// newRouter builds the broker's minimal HTTP surface: /healthz for
// liveness probes, /metrics for Prometheus scraping, and /debug/entries
// as an authorization-gated inspection endpoint. Middleware mirrors the
// teacher's server.go: gorilla/handlers for compression, panic
// recovery, CORS, and access logging.
func newRouter(s *store.Store, decoder *tokendecoder.Decoder, disableAuth bool) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/debug/entries", debugEntriesHandler(s, decoder, disableAuth)).Methods(http.MethodGet)

	r.Use(handlers.CompressHandler)
	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))
	r.Use(handlers.CORS(
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowedMethods([]string{http.MethodGet}),
		handlers.AllowedOrigins([]string{"*"})))

	return handlers.CustomLoggingHandler(io.Discard, r, func(_ io.Writer, params handlers.LogFormatterParams) {
		log.Infof("%s %s (%d, %dms)", params.Request.Method, params.URL.RequestURI(),
			params.StatusCode, time.Since(params.TimeStamp).Milliseconds())
	})
}

func debugEntriesHandler(s *store.Store, decoder *tokendecoder.Decoder, disableAuth bool) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		perms, err := permissionsFromRequest(req, decoder, disableAuth)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		var out []entryView
		s.ForEach(func(e signal.Entry) bool {
			if authz.Check(perms, authz.Read, e.Metadata.Path, time.Now()) != nil {
				return true
			}
			out = append(out, entryView{
				ID:          e.Metadata.ID,
				Path:        e.Metadata.Path,
				DataType:    e.Metadata.DataType.String(),
				EntryType:   e.Metadata.EntryType.String(),
				ChangeType:  e.Metadata.ChangeType.String(),
				Value:       e.Current.Value.String(),
				Timestamp:   e.Current.TS.Format(time.RFC3339Nano),
				HasActuator: e.ActuatorTarget != nil,
			})
			return true
		})

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			log.Errorf("server: encoding /debug/entries response: %v", err)
		}
	}
}

func permissionsFromRequest(req *http.Request, decoder *tokendecoder.Decoder, disableAuth bool) (authz.Permissions, error) {
	if disableAuth || decoder == nil {
		return authz.AllowAll(), nil
	}
	auth := req.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return authz.Permissions{}, errMissingBearerToken
	}
	perms, err := decoder.Decode(token)
	if err != nil {
		return authz.Permissions{}, err
	}
	if perms.Expired(time.Now()) {
		return authz.Permissions{}, errExpiredToken
	}
	return perms, nil
}
