// Package validate runs round-trip checks over a directory of workout files,
// skipping files that already passed unchanged.
package validate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/roundtrip"
	"github.com/claude/workouthub/internal/state"
)

// Checker runs one round trip. *ingest.Registry implements it.
type Checker interface {
	RoundTrip(f ingest.Format, in io.Reader, policy roundtrip.Policy) (*roundtrip.Report, error)
}

// State remembers files that passed. *state.DB implements it.
type State interface {
	IsValidated(relPath string, size int64, hash, policy string) (bool, error)
	MarkValidated(relPath string, size int64, hash, format, policy string) error
	Forget(relPath string) error
}

// FileResult is the outcome for one checked file. Err is set when the check
// could not run; otherwise Report holds the comparison.
type FileResult struct {
	Path    string
	Format  ingest.Format
	Report  *roundtrip.Report
	Err     error
	Elapsed time.Duration
}

// Passed reports whether the file round-tripped within tolerance.
func (r FileResult) Passed() bool {
	return r.Err == nil && r.Report != nil && r.Report.Passed()
}

// Stats tracks validation progress.
type Stats struct {
	FilesTotal   int
	FilesPassed  int
	FilesFailed  int
	FilesSkipped int
	FilesErrored int

	Results []FileResult
}

// Validator walks a directory and round-trips every file of a known format.
type Validator struct {
	checker     Checker
	state       State
	root        string
	policy      roundtrip.Policy
	fingerprint string
	force       bool
	log         *slog.Logger
	stats       Stats
}

// New creates a Validator. st may be nil, in which case every file is checked.
func New(checker Checker, st State, root string, policy roundtrip.Policy, force bool, log *slog.Logger) *Validator {
	return &Validator{
		checker:     checker,
		state:       st,
		root:        root,
		policy:      policy,
		fingerprint: PolicyFingerprint(policy),
		force:       force,
		log:         log,
	}
}

// fileInfo tracks a file's metadata for state operations.
type fileInfo struct {
	path    string
	relPath string
	format  ingest.Format
	size    int64
	hash    string
}

// Run checks every pending file. Files are checked in parallel; results keep
// walk order. A failing file never stops the run.
func (v *Validator) Run() (*Stats, error) {
	pending, err := v.collect()
	if err != nil {
		return &v.stats, err
	}

	results, err := ingest.ConvertBatch(pending, func(fi fileInfo) (FileResult, error) {
		return v.check(fi), nil
	})
	if err != nil {
		return &v.stats, err
	}

	for i, res := range results {
		fi := pending[i]
		switch {
		case res.Err != nil:
			v.stats.FilesErrored++
			v.log.Warn("round trip error", "file", fi.relPath, "format", fi.format, "error", res.Err)
		case res.Passed():
			v.stats.FilesPassed++
			if v.state != nil {
				if err := v.state.MarkValidated(fi.relPath, fi.size, fi.hash, string(fi.format), v.fingerprint); err != nil {
					v.log.Warn("failed to mark validated", "file", fi.relPath, "error", err)
				}
			}
		default:
			v.stats.FilesFailed++
			v.log.Warn("round trip out of tolerance", "file", fi.relPath, "format", fi.format,
				"violations", len(res.Report.Violations))
			if v.state != nil {
				if err := v.state.Forget(fi.relPath); err != nil {
					v.log.Warn("failed to forget", "file", fi.relPath, "error", err)
				}
			}
		}
		v.stats.Results = append(v.stats.Results, res)
	}
	return &v.stats, nil
}

// collect walks the root and returns the files that still need a check.
func (v *Validator) collect() ([]fileInfo, error) {
	var pending []fileInfo
	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		format, err := ingest.FormatFromPath(path)
		if err != nil {
			v.log.Debug("skipping file of unknown format", "file", path)
			return nil
		}
		v.stats.FilesTotal++

		relPath, _ := filepath.Rel(v.root, path)
		info, err := d.Info()
		if err != nil {
			v.log.Warn("stat failed", "file", path, "error", err)
			v.stats.FilesErrored++
			return nil
		}
		hash, err := state.HashFile(path)
		if err != nil {
			v.log.Warn("hash failed", "file", path, "error", err)
			v.stats.FilesErrored++
			return nil
		}

		if v.state != nil && !v.force {
			done, err := v.state.IsValidated(relPath, info.Size(), hash, v.fingerprint)
			if err != nil {
				v.log.Warn("state check failed", "file", path, "error", err)
				v.stats.FilesErrored++
				return nil
			}
			if done {
				v.stats.FilesSkipped++
				return nil
			}
		}

		pending = append(pending, fileInfo{
			path: path, relPath: relPath, format: format, size: info.Size(), hash: hash,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", v.root, err)
	}
	return pending, nil
}

func (v *Validator) check(fi fileInfo) (res FileResult) {
	res = FileResult{Path: fi.relPath, Format: fi.format}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	f, err := os.Open(fi.path)
	if err != nil {
		res.Err = err
		return res
	}
	defer f.Close()

	res.Report, res.Err = v.checker.RoundTrip(fi.format, f, v.policy)
	return res
}

// PolicyFingerprint identifies a policy's content, so changing the policy
// invalidates earlier passes.
func PolicyFingerprint(p roundtrip.Policy) string {
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}
