// AngelaMos | 2026
// pool_metrics.go

package core

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

const metricsNamespace = "ecoplagas"

// RegisterPoolMetrics exports connection pool statistics for the database
// and Redis clients.
func RegisterPoolMetrics(reg prometheus.Registerer, db *Database, rdb *Redis) error {
	if db != nil {
		err := reg.Register(collectors.NewDBStatsCollector(db.DB.DB, metricsNamespace))
		if err != nil {
			return fmt.Errorf("register db pool collector: %w", err)
		}
	}

	if rdb != nil {
		if err := reg.Register(newRedisPoolCollector(rdb.PoolStats)); err != nil {
			return fmt.Errorf("register redis pool collector: %w", err)
		}
	}

	return nil
}

type redisPoolCollector struct {
	stats func() *redis.PoolStats

	hits       *prometheus.Desc
	misses     *prometheus.Desc
	timeouts   *prometheus.Desc
	totalConns *prometheus.Desc
	idleConns  *prometheus.Desc
	staleConns *prometheus.Desc
}

func newRedisPoolCollector(stats func() *redis.PoolStats) *redisPoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "redis_pool", name),
			help, nil, nil,
		)
	}

	return &redisPoolCollector{
		stats:      stats,
		hits:       desc("hits_total", "Free connections found in the pool."),
		misses:     desc("misses_total", "Free connections not found in the pool."),
		timeouts:   desc("timeouts_total", "Waits for a connection that timed out."),
		totalConns: desc("total_conns", "Connections currently in the pool."),
		idleConns:  desc("idle_conns", "Idle connections in the pool."),
		staleConns: desc("stale_conns_total", "Stale connections removed from the pool."),
	}
}

func (c *redisPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.timeouts
	ch <- c.totalConns
	ch <- c.idleConns
	ch <- c.staleConns
}

func (c *redisPoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	if s == nil {
		return
	}

	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(s.IdleConns))
	ch <- prometheus.MustNewConstMetric(c.staleConns, prometheus.CounterValue, float64(s.StaleConns))
}
