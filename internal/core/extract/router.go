// Package extract holds the pure, side-effect-free parts of the extraction
// pipeline: content-type routing and content classification.
package extract

import (
	"net/http"
	"strings"
)

// Route selects the per-format extraction strategy for an upload.
type Route string

const (
	RouteImage   Route = "IMAGE"
	RoutePDF     Route = "PDF"
	RouteDocx    Route = "DOCX"
	RouteUnknown Route = "UNKNOWN"
)

// DetectRoute sniffs the file bytes first and falls back to the
// client-supplied filename. Rules are applied in order: image MIME, then
// PDF by extension or MIME, then DOCX by extension or office MIME.
func DetectRoute(data []byte, fileName string) Route {
	mime := DetectMIME(data, fileName)
	lower := strings.ToLower(fileName)

	switch {
	case strings.HasPrefix(mime, "image/"):
		return RouteImage
	case strings.HasSuffix(lower, ".pdf") || mime == "application/pdf":
		return RoutePDF
	case strings.HasSuffix(lower, ".docx") || strings.Contains(mime, "officedocument"):
		return RouteDocx
	default:
		return RouteUnknown
	}
}

// DetectMIME returns the best-effort MIME type for the file. Byte sniffing
// wins; the filename extension only breaks ties the sniffer cannot, such as
// DOCX archives that sniff as plain zip.
func DetectMIME(data []byte, fileName string) string {
	sniffed := http.DetectContentType(data)
	if mediaType, _, found := strings.Cut(sniffed, ";"); found {
		sniffed = strings.TrimSpace(mediaType)
	}

	if sniffed == "application/zip" && strings.HasSuffix(strings.ToLower(fileName), ".docx") {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if sniffed == "application/octet-stream" {
		if byExt := mimeByExtension(fileName); byExt != "" {
			return byExt
		}
	}
	return sniffed
}

func mimeByExtension(fileName string) string {
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".tif"), strings.HasSuffix(lower, ".tiff"):
		return "image/tiff"
	default:
		return ""
	}
}
