// SPDX-License-Identifier: EPL-2.0

package observe

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ProviderConfig configures the metrics provider.
type ProviderConfig struct {
	// ServiceName defaults to "audgrain".
	ServiceName    string
	ServiceVersion string

	// Registry receives the bridged metrics. A fresh registry with the Go
	// and process collectors is used when nil.
	Registry *prometheus.Registry
}

// Provider is an initialised MeterProvider plus the handler that exposes
// it in the Prometheus text format.
type Provider struct {
	MeterProvider *sdkmetric.MeterProvider
	Metrics       *Metrics

	registry *prometheus.Registry
}

// InitProvider builds a MeterProvider bridged to Prometheus and registers
// it as the global OTel provider. Call Shutdown from main.
func InitProvider(_ context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "audgrain"
	}

	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	exp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exp),
	)
	otel.SetMeterProvider(mp)

	met, err := NewMetrics(mp)
	if err != nil {
		return nil, errors.Join(err, mp.Shutdown(context.Background()))
	}

	return &Provider{MeterProvider: mp, Metrics: met, registry: reg}, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and closes the MeterProvider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.MeterProvider.Shutdown(ctx)
}
