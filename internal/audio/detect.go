package audio

import "strings"

// audioExts maps supported file extensions to whether a pure Go decoder
// handles them. The rest go through ffmpeg.
var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".aac":  false,
	".m4a":  false,
	".m4b":  false,
}

// IsSupportedExt returns true if the extension can be used as file input.
func IsSupportedExt(ext string) bool {
	_, ok := audioExts[strings.ToLower(ext)]
	return ok
}

// IsNativeExt returns true if the extension decodes without ffmpeg.
func IsNativeExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// SupportedExtsList returns a human-readable list of supported input formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg, .aac, .m4a, .m4b"
}
