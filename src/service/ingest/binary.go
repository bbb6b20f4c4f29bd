package ingest

import (
	"bytes"
	"path/filepath"
	"strings"
)

// binaryExtensions lists formats that never carry analyzable source
var binaryExtensions = map[string]bool{
	// fonts
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	// images
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".webp": true, ".tiff": true, ".tif": true,
	// archives (zip is expanded before this check)
	".tar": true, ".gz": true, ".bz2": true, ".xz": true, ".7z": true,
	".rar": true, ".jar": true, ".war": true, ".ear": true,
	// executables and objects
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".a": true,
	".o": true, ".obj": true, ".bin": true,
	// media
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wav": true,
	".flac": true, ".ogg": true,
	// documents and databases
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
	// bytecode
	".pyc": true, ".pyo": true, ".class": true, ".pickle": true, ".pkl": true,
}

var magicPrefixes = [][]byte{
	{0x1F, 0x8B},             // gzip
	{0x89, 0x50, 0x4E, 0x47}, // PNG
	{0xFF, 0xD8, 0xFF},       // JPEG
	{0x47, 0x49, 0x46, 0x38}, // GIF
	{0x25, 0x50, 0x44, 0x46}, // PDF
	{0x7F, 0x45, 0x4C, 0x46}, // ELF
	{0xCA, 0xFE, 0xBA, 0xBE}, // Mach-O / class
}

// IsBinary reports whether a file should be dropped as non-text. Stray
// control bytes inside a source file are not enough: the scanner handles
// those as malformed lines.
func IsBinary(name string, content []byte) bool {
	if binaryExtensions[strings.ToLower(filepath.Ext(name))] {
		return true
	}
	for _, prefix := range magicPrefixes {
		if bytes.HasPrefix(content, prefix) {
			return true
		}
	}
	return false
}

// IsArchive reports whether a submitted file is a zip archive to expand
func IsArchive(name string, content []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".zip") {
		return true
	}
	return bytes.HasPrefix(content, []byte{0x50, 0x4B, 0x03, 0x04})
}
