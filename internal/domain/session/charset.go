package session

import (
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
)

// DetectCharset names the charset of data. Valid UTF-8, which includes
// plain ASCII, is reported as utf-8 without consulting the detector; a
// trailing rune cut off by a sniff window does not count against it.
func DetectCharset(data []byte) string {
	if validUTF8Prefix(data) {
		return "utf-8"
	}
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil || result.Charset == "" {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

func validUTF8Prefix(data []byte) bool {
	if utf8.Valid(data) {
		return true
	}
	// a rune cut off at the end of the window
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		if utf8.RuneStart(data[len(data)-i]) {
			return !utf8.FullRune(data[len(data)-i:]) && utf8.Valid(data[:len(data)-i])
		}
	}
	return false
}

// uploadContentType refines the sniffed type of a text file whose first
// bytes are not UTF-8 with the charset the detector settles on.
func uploadContentType(head []byte) string {
	detected := mimetype.Detect(head).String()
	mediaType, params, err := mime.ParseMediaType(detected)
	if err != nil || !strings.HasPrefix(mediaType, "text/") || validUTF8Prefix(head) {
		return detected
	}
	params["charset"] = DetectCharset(head)
	return mime.FormatMediaType(mediaType, params)
}
