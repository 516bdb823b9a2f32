package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wordglow/internal/logging"
)

// Directory name prefixes owned by wordglow. Anything else under the staging
// root is left alone.
const (
	JobPrefix      = "job-"
	GeneratePrefix = "generate-"
)

// CleanResult contains the outcome of a cleanup pass.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// JobDir returns the work directory reserved for a queue job.
func JobDir(stagingDir string, jobID int64) string {
	return filepath.Join(stagingDir, fmt.Sprintf("%s%d", JobPrefix, jobID))
}

// JobID parses the queue id out of a job work directory name.
func JobID(name string) (int64, bool) {
	raw, ok := strings.CutPrefix(name, JobPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func owned(name string) bool {
	return strings.HasPrefix(name, JobPrefix) || strings.HasPrefix(name, GeneratePrefix)
}

// CleanStale removes wordglow work directories older than maxAge.
func CleanStale(ctx context.Context, stagingDir string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	cutoff := time.Now().Add(-maxAge)
	return sweep(ctx, stagingDir, logger, "stale", func(entry os.DirEntry, info os.FileInfo) bool {
		return owned(entry.Name()) && info.ModTime().Before(cutoff)
	})
}

// CleanOrphaned removes job directories whose id is not in knownJobs. One-off
// generate directories are left to CleanStale.
func CleanOrphaned(ctx context.Context, stagingDir string, knownJobs map[int64]struct{}, logger *slog.Logger) CleanResult {
	return sweep(ctx, stagingDir, logger, "orphaned", func(entry os.DirEntry, _ os.FileInfo) bool {
		id, ok := JobID(entry.Name())
		if !ok {
			return false
		}
		_, known := knownJobs[id]
		return !known
	})
}

func sweep(ctx context.Context, stagingDir string, logger *slog.Logger, reason string, match func(os.DirEntry, os.FileInfo) bool) CleanResult {
	result := CleanResult{}
	logger = logging.NewComponentLogger(logger, "staging")

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return result
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.IsDir() {
			continue
		}

		dirPath := filepath.Join(stagingDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !match(entry, info) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logger.Warn("failed to remove staging directory",
				logging.String("path", dirPath),
				logging.String("reason", reason),
				logging.Error(err),
				logging.String(logging.FieldEventType, "staging_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		logger.Info("removed staging directory",
			logging.String("path", dirPath),
			logging.String("reason", reason),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}

	return result
}

// ListDirectories returns all directories in the staging directory with their metadata.
func ListDirectories(stagingDir string) ([]DirInfo, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		dirPath := filepath.Join(stagingDir, entry.Name())
		size, _ := dirSize(dirPath)
		jobID, _ := JobID(entry.Name())

		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			JobID:   jobID,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}

	return dirs, nil
}

// DirInfo contains metadata about a staging directory. JobID is zero for
// directories that do not belong to a queue job.
type DirInfo struct {
	Name    string
	Path    string
	JobID   int64
	ModTime time.Time
	Size    int64
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
