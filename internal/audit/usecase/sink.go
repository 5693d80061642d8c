package usecase

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocloud.dev/blob"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	"github.com/allisson/gatekeeper/internal/clock"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// RotationCadence selects the calendar boundary that opens a new audit file.
type RotationCadence string

// Supported cadences.
const (
	CadenceDaily  RotationCadence = "daily"
	CadenceHourly RotationCadence = "hourly"
)

const (
	filePrefix = "audit"

	// The file size is re-checked every this many writes, not on every write.
	sizeCheckInterval = 1000
)

// fileSink owns the active audit file. It is driven by the logger's single
// worker goroutine and performs no locking of its own.
type fileSink struct {
	dir           string
	cadence       RotationCadence
	maxFileSize   int64
	compress      bool
	retentionDays int
	archive       *blob.Bucket
	clock         clock.Clock
	logger        *slog.Logger

	file             *os.File
	buf              *bufio.Writer
	period           string
	size             int64
	writesSinceCheck int
}

func (s *fileSink) periodFor(now time.Time) string {
	if s.cadence == CadenceHourly {
		return now.Format("2006-01-02-15")
	}
	return now.Format("2006-01-02")
}

func (s *fileSink) activePath() string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%s.log", filePrefix, s.period))
}

// write appends the entry to the active file, rotating first when the
// calendar period changed and afterwards when the size cap is crossed.
func (s *fileSink) write(entry *auditDomain.Entry) error {
	now := s.clock.Now()
	period := s.periodFor(now)

	if s.file == nil || period != s.period {
		if err := s.closeActive(true); err != nil {
			return err
		}
		if err := s.openActive(period); err != nil {
			return err
		}
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode audit entry")
	}

	if _, err := s.buf.Write(line); err != nil {
		return apperrors.Wrap(err, "failed to write audit entry")
	}
	if err := s.buf.WriteByte('\n'); err != nil {
		return apperrors.Wrap(err, "failed to write audit entry")
	}
	s.size += int64(len(line)) + 1

	s.writesSinceCheck++
	if s.writesSinceCheck >= sizeCheckInterval {
		s.writesSinceCheck = 0
		if s.maxFileSize > 0 && s.size >= s.maxFileSize {
			return s.rotateBySize()
		}
	}
	return nil
}

func (s *fileSink) flush() error {
	if s.buf == nil {
		return nil
	}
	if err := s.buf.Flush(); err != nil {
		return apperrors.Wrap(err, "failed to flush audit file")
	}
	return nil
}

func (s *fileSink) openActive(period string) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return apperrors.Wrap(err, "failed to create audit directory")
	}

	s.period = period
	file, err := os.OpenFile(s.activePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return apperrors.Wrap(err, "failed to open audit file")
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return apperrors.Wrap(err, "failed to stat audit file")
	}

	s.file = file
	s.buf = bufio.NewWriter(file)
	s.size = info.Size()
	s.writesSinceCheck = 0
	return nil
}

// closeActive flushes and closes the active file. With finalize set the file
// is compressed and archived, which is what calendar rotation wants; shutdown
// leaves the file as-is so the next start can append to it.
func (s *fileSink) closeActive(finalize bool) error {
	if s.file == nil {
		return nil
	}

	if err := s.flush(); err != nil {
		return err
	}
	if err := s.file.Close(); err != nil {
		return apperrors.Wrap(err, "failed to close audit file")
	}

	path := s.activePath()
	s.file = nil
	s.buf = nil
	s.size = 0

	if finalize {
		s.finalize(path)
	}
	return nil
}

// rotateIfDue finalizes the active file when its calendar period has lapsed.
// The next write opens the file for the new period.
func (s *fileSink) rotateIfDue(now time.Time) error {
	if s.file == nil || s.periodFor(now) == s.period {
		return nil
	}
	return s.closeActive(true)
}

// rotateBySize renames the active file to the next free sequence slot,
// finalizes it, and reopens a fresh active file for the same period.
func (s *fileSink) rotateBySize() error {
	if err := s.flush(); err != nil {
		return err
	}
	if err := s.file.Close(); err != nil {
		return apperrors.Wrap(err, "failed to close audit file")
	}
	s.file = nil
	s.buf = nil

	rotated := s.nextRotatedPath()
	if err := os.Rename(s.activePath(), rotated); err != nil {
		return apperrors.Wrap(err, "failed to rotate audit file")
	}
	s.finalize(rotated)

	return s.openActive(s.period)
}

func (s *fileSink) nextRotatedPath() string {
	for seq := 1; ; seq++ {
		path := filepath.Join(s.dir, fmt.Sprintf("%s-%s.%03d.log", filePrefix, s.period, seq))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if _, err := os.Stat(path + ".gz"); os.IsNotExist(err) {
				return path
			}
		}
	}
}

// finalize compresses a rotated file and uploads it to the archive bucket
// when one is configured. Failures are logged, not propagated: the rotated
// file stays on disk either way.
func (s *fileSink) finalize(path string) {
	final := path
	if s.compress {
		compressed, err := gzipFile(path)
		if err != nil {
			s.logger.Error("failed to compress rotated audit file",
				slog.String("path", path),
				slog.Any("error", err))
		} else {
			final = compressed
		}
	}

	if s.archive != nil {
		if err := s.upload(final); err != nil {
			s.logger.Error("failed to archive rotated audit file",
				slog.String("path", final),
				slog.Any("error", err))
		}
	}
}

func (s *fileSink) upload(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx := context.Background()
	writer, err := s.archive.NewWriter(ctx, filepath.Base(path), nil)
	if err != nil {
		return err
	}
	if _, err := io.Copy(writer, src); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

// sweepRetention removes files whose period date is older than the retention
// window. The active file is never removed.
func (s *fileSink) sweepRetention(now time.Time) {
	if s.retentionDays <= 0 {
		return
	}
	cutoff := now.AddDate(0, 0, -s.retentionDays)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("failed to read audit directory", slog.Any("error", err))
		}
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, filePrefix+"-") || name == filepath.Base(s.activePath()) {
			continue
		}

		date, ok := fileDate(name)
		if !ok || !date.Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			s.logger.Error("failed to remove expired audit file",
				slog.String("name", name),
				slog.Any("error", err))
		}
	}
}

// fileDate extracts the date component from an audit file name.
func fileDate(name string) (time.Time, bool) {
	rest := strings.TrimPrefix(name, filePrefix+"-")
	if len(rest) < len("2006-01-02") {
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", rest[:len("2006-01-02")])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func gzipFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.OpenFile(path+".gz", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", err
	}

	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		gz.Close()
		dst.Close()
		return "", err
	}
	if err := gz.Close(); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}

	if err := os.Remove(path); err != nil {
		return "", err
	}
	return path + ".gz", nil
}
