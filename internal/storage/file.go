package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Header is the first row of the CSV decision log. Field order is fixed.
var Header = []string{
	"interaction_id", "action", "final_reply_text", "decided_at",
	"decision_id", "platform", "user_handle", "original_reply",
}

// FileRecorder appends decisions to a CSV file. The file handle stays open
// for the recorder's lifetime; every record goes out in one O_APPEND write
// followed by fsync so concurrent writers never interleave partial rows.
type FileRecorder struct {
	path   string
	f      *os.File
	mu     sync.Mutex
	logger *zap.Logger
}

func NewFileRecorder(path string, logger *zap.Logger) (*FileRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure log dir: %w", err)
	}
	if err := ensureHeader(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open append: %w", err)
	}
	return &FileRecorder{path: path, f: f, logger: logger}, nil
}

// ensureHeader creates the file with a header row, or checks the header of an
// existing file. An existing empty file gets the header too.
func ensureHeader(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err == nil {
		defer func() { _ = f.Close() }()
		return writeHeader(f)
	}
	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("failed to init log file: %w", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}
	if st.Size() == 0 {
		// Two processes may both see the file empty and both write the
		// header. decode skips the repeated header row.
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open append: %w", err)
		}
		defer func() { _ = f.Close() }()
		return writeHeader(f)
	}
	rf, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open read: %w", err)
	}
	defer func() { _ = rf.Close() }()
	_, err = readHeader(csv.NewReader(bufio.NewReader(rf)))
	return err
}

func writeHeader(f *os.File) error {
	b, err := encodeRow(Header)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return f.Sync()
}

func readHeader(r *csv.Reader) ([]string, error) {
	h, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(h) != len(Header) {
		return nil, fmt.Errorf("%w: got %v", ErrHeaderMismatch, h)
	}
	for i := range Header {
		if h[i] != Header[i] {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrHeaderMismatch, i, h[i], Header[i])
		}
	}
	return h, nil
}

func encodeRow(row []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(row); err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *FileRecorder) Append(e Entry) error {
	b, err := encodeRow([]string{
		e.InteractionID,
		string(e.Action),
		e.FinalReplyText,
		e.DecidedAt.UTC().Format(time.RFC3339Nano),
		e.DecisionID,
		e.Platform,
		e.UserHandle,
		e.OriginalReply,
	})
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return fmt.Errorf("append: %w", os.ErrClosed)
	}
	if _, err := r.f.Write(b); err != nil {
		return fmt.Errorf("write append: %w", err)
	}
	if err := r.f.Sync(); err != nil {
		return fmt.Errorf("sync append: %w", err)
	}
	return nil
}

func (r *FileRecorder) Load() ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open read: %w", err)
	}
	defer func() { _ = f.Close() }()
	return r.decode(f)
}

func (r *FileRecorder) decode(src io.Reader) ([]Entry, error) {
	cr := csv.NewReader(bufio.NewReader(src))
	cr.FieldsPerRecord = -1
	if _, err := readHeader(cr); err != nil {
		return nil, err
	}
	var entries []Entry
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if isHeader(row) {
			// a second header from two writers initializing the same empty file
			continue
		}
		e, err := decodeRow(row)
		if err != nil {
			r.logger.Warn("⚠️ Skipping malformed decision row", zap.Int("line", line), zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func isHeader(row []string) bool {
	if len(row) != len(Header) {
		return false
	}
	for i, h := range Header {
		if row[i] != h {
			return false
		}
	}
	return true
}

func decodeRow(row []string) (Entry, error) {
	if len(row) != len(Header) {
		return Entry{}, fmt.Errorf("want %d fields, got %d", len(Header), len(row))
	}
	action := Action(row[1])
	if !action.Valid() {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidAction, row[1])
	}
	ts, err := time.Parse(time.RFC3339Nano, row[3])
	if err != nil {
		return Entry{}, fmt.Errorf("decided_at: %w", err)
	}
	return Entry{
		InteractionID:  row[0],
		Action:         action,
		FinalReplyText: row[2],
		DecidedAt:      ts,
		DecisionID:     row[4],
		Platform:       row[5],
		UserHandle:     row[6],
		OriginalReply:  row[7],
	}, nil
}

func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}
