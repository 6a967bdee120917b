package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-feed-notifier/internal/domain"
)

// Package storage keeps a short history of run reports. It never stores item links.

// Store persists run reports with a retention TTL.
type Store interface {
	Close() error
	SaveRun(report domain.RunReport) error
	RecentRuns(limit int) ([]domain.RunReport, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ReportTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	TypeNone   = "none"
	TypeBBolt  = "bbolt"
	TypeSQLite = "sqlite"

	defaultReportTTL       = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
	defaultRecentLimit     = 10
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	case TypeSQLite:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("sqlite storage requires a path")
		}
		return openSQLite(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ReportTTL <= 0 {
		opts.ReportTTL = defaultReportTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	return limit
}

type noopStore struct{}

func (noopStore) Close() error                               { return nil }
func (noopStore) SaveRun(domain.RunReport) error             { return nil }
func (noopStore) RecentRuns(int) ([]domain.RunReport, error) { return nil, nil }
