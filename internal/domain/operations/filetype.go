package operations

import (
	"strconv"

	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

// FileKind groups entries for presentation.
type FileKind string

const (
	KindFolder       FileKind = "folder"
	KindDocument     FileKind = "document"
	KindSpreadsheet  FileKind = "spreadsheet"
	KindPresentation FileKind = "presentation"
	KindPDF          FileKind = "pdf"
	KindImage        FileKind = "image"
	KindVideo        FileKind = "video"
	KindAudio        FileKind = "audio"
	KindArchive      FileKind = "archive"
	KindCode         FileKind = "code"
	KindText         FileKind = "text"
	KindOther        FileKind = "other"
)

var kindByExtension = func() map[string]FileKind {
	groups := map[FileKind][]string{
		KindImage:        {"jpg", "jpeg", "png", "gif", "bmp", "webp"},
		KindVideo:        {"mp4", "avi", "mkv", "mov", "wmv"},
		KindAudio:        {"mp3", "wav", "ogg", "flac", "m4a"},
		KindPDF:          {"pdf"},
		KindDocument:     {"doc", "docx"},
		KindSpreadsheet:  {"xls", "xlsx"},
		KindPresentation: {"ppt", "pptx"},
		KindCode:         {"js", "jsx", "ts", "tsx", "vue", "html", "css", "java", "py", "php", "go", "rs"},
		KindArchive:      {"zip", "rar", "7z", "tar", "gz"},
		KindText:         {"txt", "log", "md", "json", "xml", "yaml", "yml"},
	}
	m := make(map[string]FileKind)
	for kind, exts := range groups {
		for _, ext := range exts {
			m[ext] = kind
		}
	}
	return m
}()

var textExtensions = map[string]bool{
	"txt": true, "md": true, "json": true, "yml": true, "yaml": true,
	"xml": true, "js": true, "ts": true, "css": true, "html": true,
	"conf": true, "log": true, "properties": true, "sh": true,
	"py": true, "java": true,
}

// Classify returns the presentation kind of entry.
func Classify(entry types.Entry) FileKind {
	if entry.IsDirectory {
		return KindFolder
	}
	if kind, ok := kindByExtension[entry.Extension()]; ok {
		return kind
	}
	return KindOther
}

// IsTextFile reports whether entry can be opened in the text editor.
func IsTextFile(entry types.Entry) bool {
	if entry.IsDirectory {
		return false
	}
	return textExtensions[entry.Extension()]
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with binary units, e.g. "1.5 KB".
func FormatSize(bytes int64) string {
	if bytes < 1024 {
		return strconv.FormatInt(bytes, 10) + " B"
	}
	v := float64(bytes)
	unit := 0
	for v >= 1024 && unit < len(sizeUnits)-1 {
		v /= 1024
		unit++
	}
	return strconv.FormatFloat(roundTo(v, 2), 'f', -1, 64) + " " + sizeUnits[unit]
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int64(v*scale+0.5)) / scale
}
