// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/H0llyW00dzZ/local-ca/src/config"
	"github.com/H0llyW00dzZ/local-ca/src/internal/pki"
	x509chain "github.com/H0llyW00dzZ/local-ca/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/local-ca/src/logger"
)

// ErrDuplicateCertificate is returned when two configured certificates
// would share the same artifact files.
var ErrDuplicateCertificate = errors.New("daemon: duplicate certificate name")

const shutdownTimeout = 5 * time.Second

// Report is the outcome of checking one identity during a cycle.
type Report struct {
	pki.Result
	CertPath string
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithMetrics records cycle results and certificate expiry in m, and
// serves m when the configuration names a metrics address.
func WithMetrics(m *Metrics) Option {
	return func(d *Daemon) { d.metrics = m }
}

// WithClock overrides the time source used for chain verification and status.
func WithClock(now func() time.Time) Option {
	return func(d *Daemon) { d.now = now }
}

// Daemon keeps the configured root and leaves current.
type Daemon struct {
	cfg     *config.Config
	engine  *pki.Engine
	log     logger.Logger
	metrics *Metrics
	now     func() time.Time

	root   *pki.Identity
	leaves []*pki.Identity
}

// New builds the identity list from cfg: the root authority first, then one
// leaf per configured certificate, all issued by the root. Directories for
// every identity are created.
func New(cfg *config.Config, engine *pki.Engine, log logger.Logger, opts ...Option) (*Daemon, error) {
	d := &Daemon{
		cfg:    cfg,
		engine: engine,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	layout := cfg.Layout()
	root, err := pki.NewRootIdentity(layout, cfg.CA.Subject(), cfg.CA.ValidFor)
	if err != nil {
		return nil, fmt.Errorf("root certificate: %w", err)
	}
	d.root = root

	seen := map[string]bool{root.Name(): true}
	for i, spec := range cfg.Certificates {
		leaf, err := pki.NewLeafIdentity(layout, spec.Subject(), spec.ValidFor, root.AsIssuer())
		if err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i, err)
		}
		if seen[leaf.Name()] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCertificate, leaf.Name())
		}
		seen[leaf.Name()] = true
		d.leaves = append(d.leaves, leaf)
	}
	return d, nil
}

// Identities returns the root followed by the leaves, in check order.
func (d *Daemon) Identities() []*pki.Identity {
	return append([]*pki.Identity{d.root}, d.leaves...)
}

// Cycle checks every identity once, root first. The first failure stops
// the cycle; the reports gathered so far are returned with it.
//
// Once all identities are current each leaf is verified against the root.
// A leaf that does not verify is only reported as a warning.
func (d *Daemon) Cycle(ctx context.Context) ([]Report, error) {
	d.log.Infof("Validating certificates...")

	reports := make([]Report, 0, len(d.leaves)+1)
	for _, id := range d.Identities() {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		res, err := d.engine.Check(ctx, id)
		if err != nil {
			d.metrics.cycle("error")
			return reports, fmt.Errorf("check %s: %w", id.Name(), err)
		}
		d.metrics.expires(id.Name(), res.NotAfter, d.now())
		reports = append(reports, Report{Result: res, CertPath: id.CertPath()})
	}

	d.verifyLeaves()
	d.metrics.cycle("ok")
	return reports, nil
}

func (d *Daemon) verifyLeaves() {
	at := d.now()
	for _, leaf := range d.leaves {
		if err := x509chain.Verify(leaf.CertPath(), d.root.CertPath(), at); err != nil {
			d.log.Warnf("Certificate '%s' does not verify against '%s': %v", leaf.CertPath(), d.root.CertPath(), err)
		}
	}
}

// Run alternates cycles with pauses of the configured sleep time until ctx
// is cancelled, which is not an error. A failing cycle ends Run with that
// failure.
//
// When metrics are attached and an address is configured, the metrics
// endpoint is served for as long as Run lasts.
func (d *Daemon) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if addr := d.cfg.Metrics.Address; addr != "" && d.metrics != nil {
		srv := &http.Server{
			Addr:              addr,
			Handler:           d.metricsMux(),
			ReadHeaderTimeout: shutdownTimeout,
		}
		g.Go(func() error {
			d.log.Infof("Serving metrics on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error { return d.loop(ctx) })
	return g.Wait()
}

func (d *Daemon) metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", d.metrics.Handler())
	return mux
}

func (d *Daemon) loop(ctx context.Context) error {
	d.log.Infof("Daemon started.")

	for {
		if _, err := d.Cycle(ctx); err != nil {
			if ctx.Err() != nil {
				d.log.Infof("Program interrupted.")
				return nil
			}
			return err
		}

		d.log.Infof("Certificates checked, going to sleep...")
		timer := time.NewTimer(d.cfg.SleepTime.Std())
		select {
		case <-ctx.Done():
			timer.Stop()
			d.log.Infof("Program interrupted.")
			return nil
		case <-timer.C:
		}
	}
}

// Status inspects the managed certificates without writing anything. The
// root entry comes first.
func (d *Daemon) Status(ctx context.Context) ([]x509chain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := x509chain.NewInspector(d.cfg.RenewBefore.Std(), d.now)
	rootEntry, rootCert := in.Root(d.root.Name(), d.root.CertPath())

	entries := make([]x509chain.Entry, 0, len(d.leaves)+1)
	entries = append(entries, rootEntry)
	for _, leaf := range d.leaves {
		entries = append(entries, in.Leaf(leaf.Name(), leaf.CertPath(), rootCert))
	}
	return entries, nil
}
