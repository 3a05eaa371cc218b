// Package ledger provides file-based persistence for hash-chained audit
// records, one append-only JSON Lines file per chain with size-based
// rotation and an in-memory head cache.
package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/coreos-governance/core/internal/domain/ledger"
)

// chainFilePattern matches chain log filenames: chain-<id>.log or chain-<id>-N.log
var chainFilePattern = regexp.MustCompile(`^chain-(.+?)(?:-(\d+))?\.log$`)

// FileConfig holds configuration for the file-based ledger store.
type FileConfig struct {
	// Dir is the directory where chain files are stored.
	Dir string
	// MaxFileSizeMB is the maximum file size in megabytes before rotation (default 100).
	MaxFileSizeMB int
}

type chainHead struct {
	seq      uint64
	prevHash string // RecordHash of the last appended record, the next record's prevHash.
	exists   bool
}

type chainWriter struct {
	file   *os.File
	suffix int
	size   int64
}

// FileStore implements ledger.Store by appending one JSON line per record
// to a per-chain file, rotating to a new suffixed file once MaxFileSizeMB
// is exceeded.
type FileStore struct {
	dir         string
	maxFileSize int64
	logger      *slog.Logger

	mu      sync.Mutex
	heads   map[string]chainHead
	writers map[string]*chainWriter
}

// NewFileStore creates a file-based ledger store, creating dir if needed.
func NewFileStore(cfg FileConfig, logger *slog.Logger) (*FileStore, error) {
	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = 100
	}
	if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	return &FileStore{
		dir:         cfg.Dir,
		maxFileSize: int64(cfg.MaxFileSizeMB) * 1024 * 1024,
		logger:      logger,
		heads:       make(map[string]chainHead),
		writers:     make(map[string]*chainWriter),
	}, nil
}

// Head returns the current chain head, loading it from disk on first access.
func (s *FileStore) Head(_ context.Context, chainID string) (uint64, string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.heads[chainID]
	if ok {
		return h.seq, h.prevHash, h.exists, nil
	}

	h, err := s.loadHeadLocked(chainID)
	if err != nil {
		return 0, "", false, err
	}
	s.heads[chainID] = h
	return h.seq, h.prevHash, h.exists, nil
}

// Append durably stores rec by appending it as one JSON line to the
// chain's current file, rotating if the file would exceed maxFileSize.
func (s *FileStore) Append(_ context.Context, rec ledger.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.writerLocked(rec.ChainID)
	if err != nil {
		return err
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	line = append(line, '\n')

	if w.size+int64(len(line)) > s.maxFileSize && w.size > 0 {
		w, err = s.rotateLocked(rec.ChainID, w)
		if err != nil {
			return err
		}
	}

	n, err := w.file.Write(line)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	w.size += int64(n)
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync audit record: %w", err)
	}

	s.heads[rec.ChainID] = chainHead{seq: rec.Seq, prevHash: rec.RecordHash, exists: true}
	return nil
}

// Range returns records [fromSeq, fromSeq+count) for chainID, in order,
// scanning every rotated file belonging to the chain.
func (s *FileStore) Range(_ context.Context, chainID string, fromSeq uint64, count int) ([]ledger.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.chainFilesLocked(chainID)
	if err != nil {
		return nil, err
	}

	var out []ledger.AuditRecord
	upper := fromSeq + uint64(count)
	for _, info := range files {
		if len(out) >= count {
			break
		}
		recs, err := readRecords(filepath.Join(s.dir, info.name))
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			if r.Seq < fromSeq || r.Seq >= upper {
				continue
			}
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	if len(out) > count {
		out = out[:count]
	}
	return out, nil
}

// Close flushes and closes every open chain file.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, w := range s.writers {
		if err := w.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type chainFileInfo struct {
	name   string
	id     string
	suffix int
}

func parseChainFilename(name string) (chainFileInfo, bool) {
	m := chainFilePattern.FindStringSubmatch(name)
	if m == nil {
		return chainFileInfo{}, false
	}
	info := chainFileInfo{name: name, id: m[1]}
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return chainFileInfo{}, false
		}
		info.suffix = n
	}
	return info, true
}

func (s *FileStore) chainFilesLocked(chainID string) ([]chainFileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ledger directory: %w", err)
	}
	var files []chainFileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, ok := parseChainFilename(e.Name())
		if !ok || info.id != chainID {
			continue
		}
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].suffix < files[j].suffix })
	return files, nil
}

func (s *FileStore) loadHeadLocked(chainID string) (chainHead, error) {
	files, err := s.chainFilesLocked(chainID)
	if err != nil {
		return chainHead{}, err
	}
	if len(files) == 0 {
		return chainHead{}, nil
	}
	last := files[len(files)-1]
	recs, err := readRecords(filepath.Join(s.dir, last.name))
	if err != nil {
		return chainHead{}, err
	}
	if len(recs) == 0 {
		return chainHead{}, nil
	}
	tail := recs[len(recs)-1]
	return chainHead{seq: tail.Seq, prevHash: tail.RecordHash, exists: true}, nil
}

func (s *FileStore) writerLocked(chainID string) (*chainWriter, error) {
	if w, ok := s.writers[chainID]; ok {
		return w, nil
	}
	files, err := s.chainFilesLocked(chainID)
	if err != nil {
		return nil, err
	}
	suffix := 0
	name := fmt.Sprintf("chain-%s.log", chainID)
	if len(files) > 0 {
		last := files[len(files)-1]
		suffix = last.suffix
		name = last.name
	}
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open chain file: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat chain file: %w", err)
	}
	w := &chainWriter{file: f, suffix: suffix, size: fi.Size()}
	s.writers[chainID] = w
	return w, nil
}

// rotateLocked closes the current writer and opens a new suffixed file for
// the chain, returning the new writer.
func (s *FileStore) rotateLocked(chainID string, w *chainWriter) (*chainWriter, error) {
	if err := w.file.Close(); err != nil {
		return nil, fmt.Errorf("close rotating chain file: %w", err)
	}
	delete(s.writers, chainID)

	nextSuffix := w.suffix + 1
	if nextSuffix == 1 {
		// The very first file had no suffix; the first rotation starts at 1.
		nextSuffix = 1
	}
	name := fmt.Sprintf("chain-%s-%d.log", chainID, nextSuffix)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open rotated chain file: %w", err)
	}
	nw := &chainWriter{file: f, suffix: nextSuffix, size: 0}
	s.writers[chainID] = nw
	return nw, nil
}

func readRecords(path string) ([]ledger.AuditRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open chain file: %w", err)
	}
	defer f.Close()

	var out []ledger.AuditRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec ledger.AuditRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parse chain record: %w", err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan chain file: %w", err)
	}
	return out, nil
}

// Compile-time interface verification.
var _ ledger.Store = (*FileStore)(nil)
