/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package sap

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/assist-lab/go-sap/pkg/config"
	"github.com/assist-lab/go-sap/pkg/layers"
	"github.com/assist-lab/go-sap/pkg/log"
	"github.com/assist-lab/go-sap/pkg/sample"
	"github.com/assist-lab/go-sap/pkg/srv"
)

const (
	ApiPort = 8010

	DefaultSampleLimit = 10
)

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	sap *SAPServer
}

// DecodeRequest is the body of a POST /api/decode request. Frame is the
// raw 32-byte capture as a hex string, Type optionally names the packet
// type to search for.
type DecodeRequest struct {
	Frame string `json:"frame"`
	Type  string `json:"type,omitempty"`
}

type Persist struct {
	Dir        string `json:"dir"`
	FilePrefix string `json:"file_prefix"`
}

func NewApiServer(ctx context.Context, cfg *config.Config, sapServer *SAPServer) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.IP, ApiPort)

	s := &ApiServer{
		Context: ctx,
		Config:  cfg,
		sap:     sapServer,
	}
	return s, nil
}

func (s *ApiServer) Run() error {
	log.Debug("Starting API server: address: %s port: %d", s.Config.IP, ApiPort)
	s.configureRouter()
	httpServer := &http.Server{
		Handler: handlers.CombinedLoggingHandler(os.Stderr, s.Router),
		Addr:    fmt.Sprintf("%s:%d", s.Config.IP, ApiPort),
	}
	return httpServer.ListenAndServe()
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/samples", s.handleSamples()).Methods("GET")
	subRouter.HandleFunc("/samples/{type}", s.handleSamplesByType()).Methods("GET")
	subRouter.HandleFunc("/stats", s.handleStats()).Methods("GET")
	subRouter.HandleFunc("/decode", s.handleDecode()).Methods("POST")
	subRouter.HandleFunc("/persist", s.handlePersist()).Methods("POST")
	subRouter.HandleFunc("/flush", s.handleFlush()).Methods("GET")
}

func sampleLimit(r *http.Request) int {
	limit := DefaultSampleLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}

func (s *ApiServer) handleSamples() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling samples request")
		samples, err := s.sap.State().GetAllSamples(sampleLimit(r))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(samples)
	}
}

func (s *ApiServer) handleSamplesByType() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling samples request: type: %s", vars["type"])
		if _, err := layers.PacketTypeByName(vars["type"]); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		samples, err := s.sap.State().GetSamples(vars["type"], sampleLimit(r))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(samples)
	}
}

func (s *ApiServer) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling stats request")
		stats, err := s.sap.State().GetStats()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(stats)
	}
}

func (s *ApiServer) handleDecode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request := &DecodeRequest{}
		if err := json.NewDecoder(r.Body).Decode(request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling decode request: type: %s", request.Type)

		want, err := layers.PacketTypeByName(request.Type)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		frame, err := hex.DecodeString(request.Frame)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		packet, err := layers.DecodeFrame(frame, want)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		smpl, err := sample.ParseToSample(packet)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		smpl.Timestamp = srv.Now()
		json.NewEncoder(w).Encode(smpl)
	}
}

func (s *ApiServer) handlePersist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		persist := &Persist{}
		if err := json.NewDecoder(r.Body).Decode(persist); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		log.Debug("Handling persist request: filePrefix: %s", persist.FilePrefix)

		if err := s.sap.Handler().Persist(persist.Dir, persist.FilePrefix); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}
}

func (s *ApiServer) handleFlush() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling flush request")
		s.sap.Handler().Flush()
	}
}
