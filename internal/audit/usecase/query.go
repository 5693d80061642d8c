package usecase

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// Query flushes pending writes, then scans the audit files newest first.
// File names embed the period, so descending name order is descending time
// order; within a file entries are read in write order and walked backwards.
func (a *auditLogger) Query(ctx context.Context, filter QueryFilter) ([]*auditDomain.Entry, error) {
	if err := a.barrier(ctx); err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	toSkip := filter.Offset

	names, err := a.auditFiles()
	if err != nil {
		return nil, err
	}

	result := []*auditDomain.Entry{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(err, "audit query interrupted")
		}

		entries, err := readEntries(filepath.Join(a.cfg.Dir, name))
		if err != nil {
			// A single unreadable file does not fail the whole query
			a.logger.Error("failed to read audit file",
				slog.String("name", name),
				slog.Any("error", err))
			continue
		}

		for i := len(entries) - 1; i >= 0; i-- {
			if !matches(entries[i], filter) {
				continue
			}
			if toSkip > 0 {
				toSkip--
				continue
			}
			result = append(result, entries[i])
			if len(result) == limit {
				return result, nil
			}
		}
	}
	return result, nil
}

// auditFiles lists audit file names in descending order.
func (a *auditLogger) auditFiles() ([]string, error) {
	dirEntries, err := os.ReadDir(a.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to read audit directory")
	}

	names := []string{}
	for _, entry := range dirEntries {
		name := entry.Name()
		if entry.Type().IsRegular() && strings.HasPrefix(name, filePrefix+"-") && strings.Contains(name, ".log") {
			names = append(names, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func matches(entry *auditDomain.Entry, filter QueryFilter) bool {
	if filter.ClientID != "" && entry.ClientID != filter.ClientID {
		return false
	}
	if filter.Operation != "" && entry.Operation != filter.Operation {
		return false
	}
	if filter.Status != "" && entry.Status != filter.Status {
		return false
	}
	if !filter.Since.IsZero() && entry.Timestamp.Before(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && entry.Timestamp.After(filter.Until) {
		return false
	}
	return true
}

func readEntries(path string) ([]*auditDomain.Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	entries := []*auditDomain.Entry{}
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry auditDomain.Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			// Torn trailing lines from a crash are skipped
			continue
		}
		entries = append(entries, &entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
