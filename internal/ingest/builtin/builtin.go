// Package builtin assembles the registry of every adapter this module ships.
package builtin

import (
	"log/slog"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/ingest/fit"
	"github.com/claude/workouthub/internal/ingest/krd"
	"github.com/claude/workouthub/internal/ingest/tcx"
	"github.com/claude/workouthub/internal/ingest/zwo"
)

// Registry returns a registry holding the FIT, TCX, ZWO and KRD adapters,
// in that order.
func Registry(opts ingest.Options, log *slog.Logger) *ingest.Registry {
	return ingest.NewRegistry(
		fit.NewProvider(opts, log),
		tcx.NewProvider(opts, log),
		zwo.NewProvider(opts, log),
		krd.NewProvider(log),
	)
}
