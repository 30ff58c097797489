// Copyright 2018 Heptio
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vmware-tanzu-private/kartographer/config"
)

var (
	ManifestsLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kartographer_manifests_loaded_count",
		Help: "Counter of manifest documents loaded from disk.",
	})

	FilesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kartographer_files_skipped_count",
		Help: "Counter of manifest files skipped due to read or parse errors.",
	})

	EdgeCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kartographer_edges_extracted_count",
		Help: "Counter of relationship edges extracted, by relationship label.",
	}, []string{"relationship"})

	DiagramsRendered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kartographer_diagrams_rendered_count",
		Help: "Counter of diagrams rendered.",
	})

	PayloadsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kartographer_payloads_sent_count",
		Help: "Counter of diagrams delivered to a remote endpoint or bucket.",
	})
)

func init() {
	prometheus.MustRegister(ManifestsLoaded)
	prometheus.MustRegister(FilesSkipped)
	prometheus.MustRegister(EdgeCount)
	prometheus.MustRegister(DiagramsRendered)
	prometheus.MustRegister(PayloadsSent)
}

// Metrics checks the config and, if prometheusMetrics.port is set, exposes
// the registered metrics over HTTP. Intended for watch mode, where the
// process stays up between renders.
func Metrics(cfg config.Config) error {

	if cfg.PrometheusMetrics.Port == "" {
		glog.Infoln("prometheus metrics not configured")
		return nil
	}
	if _, err := strconv.Atoi(cfg.PrometheusMetrics.Port); err != nil {
		return fmt.Errorf("%s is not a valid port number for prometheus", cfg.PrometheusMetrics.Port)
	}
	promPort := ":" + cfg.PrometheusMetrics.Port

	promPath := cfg.PrometheusMetrics.Path
	if promPath == "" {
		promPath = "/metrics"
	}

	http.Handle(promPath, promhttp.Handler())
	go func() {
		glog.Errorf("%s", http.ListenAndServe(promPort, nil))
	}()

	glog.Infof("prometheus metrics exposed on port %s at path %s", promPort, promPath)
	return nil
}
