package metric

import "github.com/prometheus/client_golang/prometheus"

// GaugeFunc registers a gauge whose value is read from fn on every scrape.
// It is used for state owned elsewhere, such as handler pool occupancy.
func (r *Registry) GaugeFunc(name, help string, fn func() float64) error {
	if r == nil {
		return nil
	}
	return r.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// SetBuildInfo publishes a constant wirehttp_build_info gauge labeled with
// the binary's version. Calling it again fails with a duplicate
// registration error.
func (r *Registry) SetBuildInfo(version, commit, goVersion string) error {
	if r == nil {
		return nil
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build information of the running binary",
		ConstLabels: prometheus.Labels{
			"version":    version,
			"commit":     commit,
			"go_version": goVersion,
		},
	})
	g.Set(1)
	return r.registry.Register(g)
}
