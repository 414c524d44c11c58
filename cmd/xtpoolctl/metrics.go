//go:build !windows

package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omeyang/xtpool/pkg/util/xpool"
)

const namespace = "xtpool"

// poolCollector 在每次抓取时把 xpool.Stats 和 sql.DBStats 转成 Prometheus 指标。
type poolCollector struct {
	pool func() xpool.Stats
	db   func() sql.DBStats

	queued, workers, capacity *prometheus.Desc
	tasks                     *prometheus.Desc
	dbOpen, dbInUse, dbIdle   *prometheus.Desc
	dbWaitCount, dbWaitTime   *prometheus.Desc
}

func newPoolCollector(pool func() xpool.Stats, db func() sql.DBStats) *poolCollector {
	labels := []string{"pool", "mode"}
	return &poolCollector{
		pool:     pool,
		db:       db,
		queued:   prometheus.NewDesc(namespace+"_queue_depth", "Tasks waiting in the queue.", labels, nil),
		workers:  prometheus.NewDesc(namespace+"_workers", "Configured worker count.", labels, nil),
		capacity: prometheus.NewDesc(namespace+"_queue_capacity", "Maximum queued tasks.", labels, nil),
		tasks: prometheus.NewDesc(namespace+"_tasks_total", "Task outcomes by kind.",
			append(labels, "kind"), nil),
		dbOpen:      prometheus.NewDesc(namespace+"_db_connections_open", "Open database connections.", nil, nil),
		dbInUse:     prometheus.NewDesc(namespace+"_db_connections_in_use", "Database connections in use.", nil, nil),
		dbIdle:      prometheus.NewDesc(namespace+"_db_connections_idle", "Idle database connections.", nil, nil),
		dbWaitCount: prometheus.NewDesc(namespace+"_db_wait_total", "Waits for a database connection.", nil, nil),
		dbWaitTime:  prometheus.NewDesc(namespace+"_db_wait_seconds_total", "Time spent waiting for a database connection.", nil, nil),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.queued, c.workers, c.capacity, c.tasks} {
		ch <- d
	}
	if c.db != nil {
		for _, d := range []*prometheus.Desc{c.dbOpen, c.dbInUse, c.dbIdle, c.dbWaitCount, c.dbWaitTime} {
			ch <- d
		}
	}
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool()
	lv := []string{s.Name, s.Mode.String()}
	ch <- prometheus.MustNewConstMetric(c.queued, prometheus.GaugeValue, float64(s.Queued), lv...)
	ch <- prometheus.MustNewConstMetric(c.workers, prometheus.GaugeValue, float64(s.Workers), lv...)
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.MaxRequests), lv...)
	for kind, v := range map[string]uint64{
		"submitted":        s.Submitted,
		"rejected":         s.Rejected,
		"dispatched":       s.Dispatched,
		"expired":          s.Expired,
		"acquire_failed":   s.AcquireFailures,
		"panicked":         s.Panics,
		"spurious_wakeups": s.SpuriousWakeups,
	} {
		ch <- prometheus.MustNewConstMetric(c.tasks, prometheus.CounterValue, float64(v), append(lv, kind)...)
	}

	if c.db == nil {
		return
	}
	d := c.db()
	ch <- prometheus.MustNewConstMetric(c.dbOpen, prometheus.GaugeValue, float64(d.OpenConnections))
	ch <- prometheus.MustNewConstMetric(c.dbInUse, prometheus.GaugeValue, float64(d.InUse))
	ch <- prometheus.MustNewConstMetric(c.dbIdle, prometheus.GaugeValue, float64(d.Idle))
	ch <- prometheus.MustNewConstMetric(c.dbWaitCount, prometheus.CounterValue, float64(d.WaitCount))
	ch <- prometheus.MustNewConstMetric(c.dbWaitTime, prometheus.CounterValue, d.WaitDuration.Seconds())
}

// newMetricsRegistry 注册 pool、会话和 Go 运行时指标。
func newMetricsRegistry(c *poolCollector, sessions func() int) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Open client sessions.",
	}, func() float64 { return float64(sessions()) })
	return reg, nil
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
