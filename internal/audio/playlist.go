package audio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"
)

// IsPlaylistExt reports whether ext names a local playlist format.
func IsPlaylistExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".m3u", ".m3u8", ".pls":
		return true
	}
	return false
}

// ParsePlaylist parses a local .m3u/.m3u8/.pls file into file paths.
// Relative entries are resolved against the playlist directory and URLs
// are skipped.
func ParsePlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, fmt.Errorf("unsupported playlist format %s", ext)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("playlist is not valid UTF-8")
	}

	baseDir := filepath.Dir(abs)
	scanner := bufio.NewScanner(strings.NewReader(strings.TrimPrefix(string(data), "\uFEFF")))
	if ext == ".pls" {
		return parsePLS(scanner, baseDir), nil
	}
	return parseM3U(scanner, baseDir), nil
}

func parseM3U(scanner *bufio.Scanner, baseDir string) []string {
	var entries []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if p, ok := resolveEntry(line, baseDir); ok {
			entries = append(entries, p)
		}
	}
	return entries
}

func parsePLS(scanner *bufio.Scanner, baseDir string) []string {
	var entries []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if val == "" || !isPLSFileKey(key) {
			continue
		}
		if p, ok := resolveEntry(val, baseDir); ok {
			entries = append(entries, p)
		}
	}
	return entries
}

func isPLSFileKey(key string) bool {
	rest, ok := strings.CutPrefix(strings.ToLower(key), "file")
	if !ok || rest == "" {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}

func resolveEntry(raw, baseDir string) (string, bool) {
	raw = strings.Trim(raw, `"`)
	if strings.Contains(raw, "://") {
		return "", false
	}
	p := filepath.Clean(raw)
	if filepath.IsAbs(p) {
		return p, true
	}
	return filepath.Join(baseDir, p), true
}

// playableFiles keeps existing, non-directory files in a supported format.
func playableFiles(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || !IsSupportedExt(filepath.Ext(p)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// playlistStream reads entries in order and wraps around at the end.
// Entries that fail to open are skipped.
type playlistStream struct {
	entries []string
	open    func(path string) (Stream, error)
	logger  *slog.Logger

	mu     sync.Mutex
	idx    int
	cur    Stream
	closed bool
}

func newPlaylistStream(entries []string, logger *slog.Logger) *playlistStream {
	return &playlistStream{
		entries: entries,
		open:    func(path string) (Stream, error) { return openFileStream(path, false) },
		logger:  logger,
	}
}

func (s *playlistStream) Read(p []float64) (int, error) {
	// empty counts consecutive entries that ended or failed without a sample
	empty := 0
	for {
		cur, err := s.current()
		if err != nil {
			return 0, err
		}
		n, err := cur.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == nil {
			return 0, nil
		}
		if s.isClosed() {
			return 0, io.ErrClosedPipe
		}
		if !errors.Is(err, io.EOF) {
			s.logger.Warn("playlist entry failed", "source", cur.Label(), "error", err)
		}
		s.advance(cur)
		empty++
		if empty >= len(s.entries) {
			return 0, io.EOF
		}
	}
}

// current opens the entry at idx if nothing is open, skipping entries that
// fail to open.
func (s *playlistStream) current() (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, io.ErrClosedPipe
	}
	if s.cur != nil {
		return s.cur, nil
	}

	var lastErr error
	for range s.entries {
		path := s.entries[s.idx]
		st, err := s.open(path)
		if err == nil {
			s.cur = st
			s.logger.Info("playlist entry", "index", s.idx, "source", st.Label())
			return st, nil
		}
		s.logger.Warn("skipping playlist entry", "path", path, "error", err)
		lastErr = err
		s.idx = (s.idx + 1) % len(s.entries)
	}
	return nil, fmt.Errorf("no playable playlist entries: %w", lastErr)
}

func (s *playlistStream) advance(done Stream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != done {
		return
	}
	s.cur.Close()
	s.cur = nil
	s.idx = (s.idx + 1) % len(s.entries)
}

func (s *playlistStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *playlistStream) SampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		return s.cur.SampleRate()
	}
	return DefaultSampleRate
}

func (s *playlistStream) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		return s.cur.Label()
	}
	return "playlist"
}

func (s *playlistStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cur == nil {
		return nil
	}
	err := s.cur.Close()
	s.cur = nil
	return err
}
