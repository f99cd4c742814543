package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const maxLineBytes = 1024 * 1024

// ErrNoLog reports that no log file matched.
var ErrNoLog = errors.New("no matching log file")

// Resolve returns the log path for jobID inside logDir. An empty jobID
// selects the main log; otherwise jobID may be a unique prefix.
func Resolve(logDir, jobID string) (string, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return filepath.Join(logDir, "ripfeed.log"), nil
	}
	if strings.ContainsAny(jobID, `/\*?[`) {
		return "", fmt.Errorf("invalid job id %q", jobID)
	}

	exact := filepath.Join(logDir, "jobs", jobID+".log")
	if _, err := os.Stat(exact); err == nil {
		return exact, nil
	}
	matches, err := filepath.Glob(filepath.Join(logDir, "jobs", jobID+"*.log"))
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w for job %s", ErrNoLog, jobID)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("job id prefix %q matches %d logs", jobID, len(matches))
	}
}

// Last returns up to n trailing lines of path and the offset of its end. A
// missing file yields no lines and offset 0.
func Last(path string, n int) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var tail []string
	scanner := newScanner(f)
	for scanner.Scan() {
		if n <= 0 {
			continue
		}
		if len(tail) == n {
			tail = append(tail[:0], tail[1:]...)
		}
		tail = append(tail, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}
	return tail, end, nil
}

// Read returns the complete lines after offset and the offset following the
// last one returned. A partially written final line is left for the next
// call. An offset past the end (the file was truncated) restarts at 0.
func Read(path string, offset int64) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, offset, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	r := bufio.NewReaderSize(f, 64*1024)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, offset, nil
			}
			return lines, offset, fmt.Errorf("read log file: %w", err)
		}
		if len(line) > maxLineBytes {
			return lines, offset, fmt.Errorf("read log file: line at offset %d exceeds %d bytes", offset, maxLineBytes)
		}
		offset += int64(len(line))
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}
}

// Follow emits lines appended to path after offset until ctx is done, then
// returns ctx.Err(). File writes wake it through inotify; interval is a
// polling fallback for filesystems that do not deliver events.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, emit func(string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer watcher.Close()
		if watcher.Add(path) == nil {
			events, errs = watcher.Events, watcher.Errors
		}
	}

	for {
		lines, next, err := Read(path, offset)
		if err != nil {
			return err
		}
		for _, line := range lines {
			emit(line)
		}
		offset = next

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		}
	}
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return scanner
}
