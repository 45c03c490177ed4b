package generator

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// FileStats is operator-facing accounting for one batch. It never drives
// control flow.
type FileStats struct {
	Created     int // files written because content differed or was new
	Identical   int // files skipped because content matched byte-for-byte
	Formatted   int // files handed to the batch formatter
	Directories int // directories created
	Errors      int
}

// FileManager writes rendered output. Writes can be deferred into an
// in-memory buffer keyed by path and flushed in one batch: each buffered
// file is compared against what is on disk and only written when the bytes
// differ, which is what makes regeneration against an unchanged schema a
// zero-write operation.
type FileManager struct {
	mu       sync.Mutex
	pending  map[string][]byte
	madeDirs map[string]bool
	force    bool
	// formatter is an argv prefix run once over all changed files, e.g.
	// {"prettier", "--write"}. Empty disables formatting.
	formatter []string
	log       zerolog.Logger

	stats FileStats
}

func NewFileManager(log zerolog.Logger) *FileManager {
	return &FileManager{
		pending:  map[string][]byte{},
		madeDirs: map[string]bool{},
		log:      log,
	}
}

// WithFormatter sets the batch formatter command.
func (fm *FileManager) WithFormatter(argv []string) *FileManager {
	fm.formatter = argv
	return fm
}

// WithForce disables content comparison: every buffered file is rewritten.
func (fm *FileManager) WithForce(force bool) *FileManager {
	fm.force = force
	return fm
}

// Write stores or writes content for path. With deferred true the content
// is buffered until ProcessBatch; otherwise it is compared and written
// immediately.
func (fm *FileManager) Write(path string, content []byte, deferred bool) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if deferred {
		fm.pending[path] = content
		return nil
	}
	_, err := fm.writeOne(path, content)
	return err
}

// Pending returns the buffered paths, sorted. Used for dry-run reporting
// and tests.
func (fm *FileManager) Pending() []string {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	paths := make([]string, 0, len(fm.pending))
	for p := range fm.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Remove drops specific buffered paths, leaving the rest of the batch
// intact. Used when a table fails after some of its files were buffered.
func (fm *FileManager) Remove(paths ...string) {
	fm.mu.Lock()
	for _, p := range paths {
		delete(fm.pending, p)
	}
	fm.mu.Unlock()
}

// Discard drops the buffer without touching disk. Used on cancellation.
func (fm *FileManager) Discard() {
	fm.mu.Lock()
	fm.pending = map[string][]byte{}
	fm.mu.Unlock()
}

// ProcessBatch flushes the buffer: unchanged files are skipped, changed
// files are written and then formatted together in a single formatter
// invocation. Formatting failures are advisory.
func (fm *FileManager) ProcessBatch() (FileStats, error) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	paths := make([]string, 0, len(fm.pending))
	for p := range fm.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var changed []string
	var firstErr error
	for _, p := range paths {
		wrote, err := fm.writeOne(p, fm.pending[p])
		if err != nil {
			fm.stats.Errors++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if wrote {
			changed = append(changed, p)
		}
	}
	fm.pending = map[string][]byte{}

	if len(changed) > 0 && len(fm.formatter) > 0 {
		// One invocation for the whole batch; per-file runs are markedly
		// slower for formatters with interpreter startup cost.
		args := append(append([]string(nil), fm.formatter[1:]...), changed...)
		cmd := exec.Command(fm.formatter[0], args...)
		if out, err := cmd.CombinedOutput(); err != nil {
			fm.log.Warn().Err(err).Str("output", string(bytes.TrimSpace(out))).Msg("batch formatting failed")
		} else {
			fm.stats.Formatted += len(changed)
		}
	}

	return fm.stats, firstErr
}

// Stats returns a copy of the accumulated statistics.
func (fm *FileManager) Stats() FileStats {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.stats
}

// writeOne compares and writes a single file, creating its directory on
// first use. The caller holds fm.mu.
func (fm *FileManager) writeOne(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && !fm.force && bytes.Equal(existing, content) {
		fm.stats.Identical++
		fm.log.Debug().Str("path", path).Msg("unchanged, skipping")
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("reading %s: %v", path, err)
	}

	if err := fm.ensureDir(filepath.Dir(path)); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %v", path, err)
	}
	fm.stats.Created++
	return true, nil
}

func (fm *FileManager) ensureDir(dir string) error {
	if fm.madeDirs[dir] {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %v", dir, err)
		}
		fm.stats.Directories++
	}
	fm.madeDirs[dir] = true
	return nil
}
