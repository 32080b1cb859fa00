package config

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/danshapiro/codexlink/internal/iosafe"
)

// Target pairs an output path with the emitter that renders it.
type Target struct {
	Path   string
	Render func(Config) (string, error)
}

// WriteResult reports what happened for one target.
type WriteResult struct {
	Path        string
	Backup      string
	Fingerprint string
	DryRun      bool
}

// Fingerprint is the blake3 digest of rendered config text, used to log and
// compare what was written without echoing the content.
func Fingerprint(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:16])
}

// WriteOpts control how targets are written.
type WriteOpts struct {
	DryRun   bool // render and fingerprint without touching disk
	NoBackup bool // overwrite in place instead of keeping a timestamped .bak
}

// WriteOutputs renders cfg for every target and writes each atomically with
// a timestamped backup of whatever was there before. With DryRun the
// rendered text is fingerprinted but nothing touches disk.
func WriteOutputs(logger *zap.Logger, cfg Config, targets []Target, opts WriteOpts) ([]WriteResult, error) {
	results := make([]WriteResult, 0, len(targets))
	for _, tgt := range targets {
		text, err := tgt.Render(cfg)
		if err != nil {
			return results, fmt.Errorf("render %s: %w", tgt.Path, err)
		}
		res := WriteResult{Path: tgt.Path, Fingerprint: Fingerprint(text), DryRun: opts.DryRun}
		if !opts.DryRun {
			if opts.NoBackup {
				err = iosafe.AtomicWrite(tgt.Path, text)
			} else {
				res.Backup, err = iosafe.AtomicWriteWithBackup(tgt.Path, text)
			}
			if err != nil {
				return results, fmt.Errorf("write %s: %w", tgt.Path, err)
			}
		}
		if logger != nil {
			logger.Info("config written",
				zap.String("event", "config_written"),
				zap.String("path", res.Path),
				zap.String("fingerprint", res.Fingerprint),
				zap.Bool("dry_run", opts.DryRun),
			)
		}
		results = append(results, res)
	}
	return results, nil
}
