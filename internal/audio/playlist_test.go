package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestParsePlaylistM3U(t *testing.T) {
	dir := t.TempDir()
	playlist := filepath.Join(dir, "list.m3u")
	writeFile(t, playlist, "\uFEFF#EXTM3U\n\nsong1.mp3\n#comment\nhttps://example.com/stream\nsub/song2.wav\n")

	got, err := ParsePlaylist(playlist)
	if err != nil {
		t.Fatalf("ParsePlaylist() error = %v", err)
	}
	want := []string{filepath.Join(dir, "song1.mp3"), filepath.Join(dir, "sub", "song2.wav")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParsePlaylist() = %#v, want %#v", got, want)
	}
}

func TestParsePlaylistPLS(t *testing.T) {
	dir := t.TempDir()
	playlist := filepath.Join(dir, "list.pls")
	writeFile(t, playlist, "[playlist]\n file1 = one.flac \nTitle1=One\nFile2=https://example.com/live\nFileX=bad.mp3\nFile3=\n")

	got, err := ParsePlaylist(playlist)
	if err != nil {
		t.Fatalf("ParsePlaylist() error = %v", err)
	}
	want := []string{filepath.Join(dir, "one.flac")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParsePlaylist() = %#v, want %#v", got, want)
	}
}

func TestParsePlaylistRejectsOtherFormats(t *testing.T) {
	if _, err := ParsePlaylist("notes.txt"); err == nil {
		t.Fatal("expected error for .txt")
	}
}

func TestPlayableFiles(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.wav")
	writeFile(t, ok, "x")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")

	got := playableFiles([]string{ok, filepath.Join(dir, "notes.txt"), filepath.Join(dir, "missing.mp3"), dir})
	if !reflect.DeepEqual(got, []string{ok}) {
		t.Fatalf("playableFiles() = %#v", got)
	}
}

// sliceStream yields its samples once and then io.EOF.
type sliceStream struct {
	label  string
	data   []float64
	closed bool
}

func (s *sliceStream) Read(p []float64) (int, error) {
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, s.data)
	s.data = s.data[n:]
	return n, nil
}

func (s *sliceStream) SampleRate() int { return 8000 }
func (s *sliceStream) Label() string   { return s.label }
func (s *sliceStream) Close() error    { s.closed = true; return nil }

func testPlaylist(entries map[string][]float64, order ...string) (*playlistStream, map[string]*sliceStream) {
	opened := map[string]*sliceStream{}
	s := &playlistStream{
		entries: order,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		open: func(path string) (Stream, error) {
			data, ok := entries[path]
			if !ok {
				return nil, errors.New("cannot open " + path)
			}
			st := &sliceStream{label: path, data: append([]float64(nil), data...)}
			opened[path] = st
			return st, nil
		},
	}
	return s, opened
}

func TestPlaylistStreamAdvancesAndWraps(t *testing.T) {
	s, opened := testPlaylist(map[string][]float64{
		"a": {0.1, 0.2},
		"b": {0.3},
	}, "a", "broken", "b")

	buf := make([]float64, 8)
	var got []float64
	for range 4 {
		n, err := s.Read(buf)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		got = append(got, buf[:n]...)
	}
	want := []float64{0.1, 0.2, 0.3, 0.1, 0.2, 0.3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("samples = %v, want %v", got, want)
	}
	if !opened["a"].closed {
		t.Fatal("finished entry was not closed")
	}
	if s.Label() != "b" {
		t.Fatalf("Label() = %q, want b", s.Label())
	}
}

func TestPlaylistStreamAllEmptyEnds(t *testing.T) {
	s, _ := testPlaylist(map[string][]float64{"a": nil, "b": nil}, "a", "b")
	if _, err := s.Read(make([]float64, 4)); !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

func TestPlaylistStreamNothingOpens(t *testing.T) {
	s, _ := testPlaylist(map[string][]float64{}, "x", "y")
	if _, err := s.Read(make([]float64, 4)); err == nil {
		t.Fatal("expected error when no entry opens")
	}
}

func TestPlaylistStreamClose(t *testing.T) {
	s, opened := testPlaylist(map[string][]float64{"a": {0.5, 0.5, 0.5}}, "a")
	if _, err := s.Read(make([]float64, 1)); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !opened["a"].closed {
		t.Fatal("current entry not closed")
	}
	if _, err := s.Read(make([]float64, 1)); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("err = %v, want io.ErrClosedPipe", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestFileProviderEmptyPlaylist(t *testing.T) {
	dir := t.TempDir()
	playlist := filepath.Join(dir, "empty.m3u")
	writeFile(t, playlist, "#EXTM3U\nmissing.mp3\n")

	_, err := FileProvider{Path: playlist}.Open(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no playable files") {
		t.Fatalf("err = %v, want no playable files", err)
	}
}
