package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Metrics holds the serving-path counters. Registration tolerates the metric
// already existing so tests can build multiple service stacks.
type Metrics struct {
	ProfilesBuilt        prometheus.Counter
	RecommendationSets   prometheus.Counter
	ProfileBuildDuration prometheus.Histogram
	PredictedCacheHits   prometheus.Counter
}

func NewMetrics(logger *logrus.Logger) *Metrics {
	m := &Metrics{
		ProfilesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelwise_profiles_built_total",
			Help: "User profiles built at login",
		}),
		RecommendationSets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelwise_recommendation_sets_total",
			Help: "Recommendation sets sampled and served",
		}),
		ProfileBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reelwise_profile_build_seconds",
			Help:    "Wall time of the login-time profile pipeline",
			Buckets: prometheus.DefBuckets,
		}),
		PredictedCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelwise_predicted_cache_hits_total",
			Help: "Predicted-rating vectors served from the warm cache",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.ProfilesBuilt, m.RecommendationSets, m.ProfileBuildDuration, m.PredictedCacheHits,
	} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				logger.WithError(err).Warn("Failed to register metric")
			}
		}
	}
	return m
}
