package store

import (
	"fmt"
	"io"
	"os"
	"time"
)

// DefaultOutputLimit is the byte limit used when a read passes limit <= 0.
const DefaultOutputLimit = 64 * 1024

// AppendJobOutput appends bytes to the job's output log. The job record is
// deliberately not touched: the log file's mtime is the authoritative
// last-output time and its size is read on demand, which keeps the hot path
// free of record write contention.
func (s *Store) AppendJobOutput(key, jobID string, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := validateSessionKey(key); err != nil {
		return err
	}

	f, err := os.OpenFile(s.outputPath(key, jobID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	_, err = f.Write(data)
	if err1 := f.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		return fmt.Errorf("append output: %w", err)
	}
	return nil
}

// OutputInfo returns the output log's current size and mtime. A missing
// file reports size 0 and a zero time.
func (s *Store) OutputInfo(key, jobID string) (int64, time.Time, error) {
	if err := validateSessionKey(key); err != nil {
		return 0, time.Time{}, err
	}

	info, err := os.Stat(s.outputPath(key, jobID))
	if os.IsNotExist(err) {
		return 0, time.Time{}, nil
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("stat output file: %w", err)
	}
	return info.Size(), info.ModTime(), nil
}

// ReadJobOutput reads at most limit bytes starting at offset. Readers
// tolerate a concurrently growing file: the total size is taken from a stat
// at read time and never assumed final.
func (s *Store) ReadJobOutput(key, jobID string, offset, limit int64) (OutputChunk, error) {
	if err := validateSessionKey(key); err != nil {
		return OutputChunk{}, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultOutputLimit
	}

	f, err := os.Open(s.outputPath(key, jobID))
	if os.IsNotExist(err) {
		return OutputChunk{}, nil
	}
	if err != nil {
		return OutputChunk{}, fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return OutputChunk{}, fmt.Errorf("stat output file: %w", err)
	}
	totalSize := info.Size()

	if offset >= totalSize {
		return OutputChunk{TotalSize: totalSize}, nil
	}

	buf := make([]byte, limit)
	n, err := f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return OutputChunk{}, fmt.Errorf("read output: %w", err)
	}

	return OutputChunk{
		Content:   buf[:n],
		Size:      int64(n),
		TotalSize: totalSize,
		HasMore:   offset+int64(n) < totalSize,
	}, nil
}

// ReadJobOutputTail returns the trailing tailBytes of the output log,
// prefixed with "..." when truncated. LastOutputSecondsAgo derives from the
// file's mtime.
func (s *Store) ReadJobOutputTail(key, jobID string, tailBytes int64) (OutputTail, error) {
	if err := validateSessionKey(key); err != nil {
		return OutputTail{}, err
	}
	if tailBytes <= 0 {
		tailBytes = DefaultOutputLimit
	}

	size, mtime, err := s.OutputInfo(key, jobID)
	if err != nil {
		return OutputTail{}, err
	}

	tail := OutputTail{TotalSize: size}
	if !mtime.IsZero() {
		tail.LastOutputSecondsAgo = s.now().Sub(mtime).Seconds()
		if tail.LastOutputSecondsAgo < 0 {
			tail.LastOutputSecondsAgo = 0
		}
	}
	if size == 0 {
		return tail, nil
	}

	offset := int64(0)
	if size > tailBytes {
		offset = size - tailBytes
	}

	chunk, err := s.ReadJobOutput(key, jobID, offset, tailBytes)
	if err != nil {
		return OutputTail{}, err
	}

	content := string(chunk.Content)
	if offset > 0 {
		content = "..." + content
	}
	tail.Content = content
	return tail, nil
}
