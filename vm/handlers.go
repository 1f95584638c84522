// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	stdjson "encoding/json"
	"net/http"

	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/rpc/v2"
	log "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MetricsEndpoint = "/metrics"
	HealthEndpoint  = "/health"
)

// Handler routes the JSON-RPC service, metrics and the health check.
func (vm *VM) Handler() (http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	server.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	if err := server.RegisterService(&PublicService{vm: vm}, Name); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle(PublicEndpoint, server)
	r.Handle(MetricsEndpoint, promhttp.HandlerFor(vm.metricsRegistry, promhttp.HandlerOpts{}))
	r.Get(HealthEndpoint, vm.health)
	return r, nil
}

func (vm *VM) health(w http.ResponseWriter, _ *http.Request) {
	details, ok := vm.Healthy()
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := stdjson.NewEncoder(w).Encode(details); err != nil {
		log.Warn("failed to write health response", "err", err)
	}
}
