package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/overpass-harvester/internal/config"
	"github.com/samvad-hq/overpass-harvester/internal/logger"
	"github.com/samvad-hq/overpass-harvester/internal/metrics"
	"github.com/samvad-hq/overpass-harvester/internal/storage"
	"github.com/samvad-hq/overpass-harvester/internal/updater"
	"github.com/samvad-hq/overpass-harvester/pkg/jobs"
	"github.com/samvad-hq/overpass-harvester/pkg/overpass"
	"github.com/samvad-hq/overpass-harvester/pkg/publishers"
)

// Cron is the scheduled driver runtime. It refreshes every enabled job on
// each tick, waiting out the Overpass rate limit between queries.
type Cron struct {
	cfg      *config.Config
	jobReg   *jobs.Registry
	fanout   *publishers.Fanout
	updater  *updater.Service
	interval time.Duration
	log      logger.Logger
	store    storage.Store
	metrics  *http.Server
}

// NewCron builds a cron runtime from config files.
func NewCron(ctx context.Context, cfg *config.Config, log logger.Logger) (*Cron, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	jobReg, err := jobs.LoadRegistry(cfg.JobsFile)
	if err != nil {
		return nil, fmt.Errorf("load jobs registry: %w", err)
	}
	jobList := jobReg.Enabled()
	jobIDs := make([]string, 0, len(jobList))
	for _, j := range jobList {
		jobIDs = append(jobIDs, j.ID)
	}
	log.InfoObj("jobs registry loaded", "jobs_meta", map[string]any{
		"count": len(jobIDs),
		"ids":   jobIDs,
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	client := overpass.DefaultClient(cfg.HTTPTimeout, log)
	svc := updater.NewService(client, cfg, cfg.Workdir, fanout, log, store)

	return &Cron{
		cfg:      cfg,
		jobReg:   jobReg,
		fanout:   fanout,
		updater:  svc,
		interval: cfg.CronInterval,
		log:      log,
		store:    store,
	}, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(cfg.PublishersFile) == "" {
		log.InfoObj("no publishers file configured; dataset events disabled", "publishers_file", cfg.PublishersFile)
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run refreshes jobs until the context is cancelled, or once when cron_once is set.
func (c *Cron) Run(ctx context.Context) error {
	if c == nil || c.updater == nil {
		return fmt.Errorf("cron is not initialized")
	}
	defer c.close()
	c.startMetrics()

	jobList := c.jobReg.Enabled()
	if len(jobList) == 0 {
		c.log.WarnObj("no enabled jobs configured; cron idle", "jobs_file", c.cfg.JobsFile)
		if c.cfg.CronOnce {
			return nil
		}
		<-ctx.Done()
		return ctx.Err()
	}

	c.log.InfoObj("cron loop starting", "cron_state", map[string]any{
		"jobs_count":       len(jobList),
		"publishers_count": c.fanout.Size(),
		"cron_interval":    c.interval.String(),
		"overpass_uri":     c.cfg.OverpassURI(),
		"once":             c.cfg.CronOnce,
	})

	if err := c.runOnce(ctx, jobList); err != nil {
		if c.cfg.CronOnce {
			return err
		}
		c.log.ErrorObj("initial update failed", "error", err)
	}
	if c.cfg.CronOnce {
		return nil
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.InfoObj("cron loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := c.runOnce(ctx, c.jobReg.Enabled()); err != nil {
				c.log.ErrorObj("scheduled update failed", "error", err)
			}
		}
	}
}

// runOnce performs a single update pass across all jobs.
func (c *Cron) runOnce(ctx context.Context, jobList []jobs.Job) error {
	start := time.Now()
	c.log.InfoObj("update started", "update_meta", map[string]any{
		"jobs_count": len(jobList),
		"started_at": start.UTC(),
	})
	if err := c.updater.Run(ctx, jobList); err != nil {
		return err
	}
	c.log.InfoObj("update completed", "update_meta", map[string]any{
		"jobs_count": len(jobList),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (c *Cron) startMetrics() {
	addr := strings.TrimSpace(c.cfg.MetricsAddr)
	if addr == "" {
		return
	}
	c.metrics = &http.Server{
		Addr:              addr,
		Handler:           metrics.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		c.log.InfoObj("metrics server listening", "metrics_addr", addr)
		if err := c.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log.ErrorObj("metrics server failed", "error", err)
		}
	}()
}

// close releases the store, publishers and metrics server, logging any errors encountered.
func (c *Cron) close() {
	if c == nil {
		return
	}
	if c.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.metrics.Shutdown(ctx); err != nil {
			c.log.ErrorObj("metrics server shutdown failed", "error", err)
		}
		cancel()
	}
	if err := c.fanout.Close(); err != nil {
		c.log.ErrorObj("publishers close failed", "error", err)
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.log.ErrorObj("storage close failed", "error", err)
		}
	}
}
