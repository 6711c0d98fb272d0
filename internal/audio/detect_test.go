package audio

import (
	"strings"
	"testing"
)

func TestIsSupportedExt(t *testing.T) {
	for _, ext := range []string{".mp3", ".WAV", ".flac", ".ogg", ".aac", ".m4a", ".m4b"} {
		if !IsSupportedExt(ext) {
			t.Fatalf("expected %s to be supported", ext)
		}
	}
	if IsSupportedExt(".txt") {
		t.Fatal("expected .txt to be unsupported")
	}
}

func TestIsNativeExtExcludesContainers(t *testing.T) {
	if !IsNativeExt(".flac") {
		t.Fatal("expected .flac to decode natively")
	}
	if IsNativeExt(".m4a") {
		t.Fatal("expected .m4a to need ffmpeg")
	}
}

func TestSupportedExtsListMatchesTable(t *testing.T) {
	list := SupportedExtsList()
	for ext := range audioExts {
		if !strings.Contains(list, ext) {
			t.Fatalf("expected supported ext list to include %s, got %q", ext, list)
		}
	}
}

func TestReadLabelFallsBackToFileName(t *testing.T) {
	if got := ReadLabel("/music/Some Song.mp3"); got != "Some Song" {
		t.Fatalf("ReadLabel() = %q, want %q", got, "Some Song")
	}
}
