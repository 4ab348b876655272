package mailer

import (
	"encoding/base64"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"google.golang.org/api/gmail/v1"
)

// extractBody pulls a plain-text body out of a Gmail message payload. The
// text/plain part wins when present; otherwise the text/html part is
// stripped down to its text content.
func extractBody(payload *gmail.MessagePart, logger *slog.Logger) string {
	if payload == nil {
		return ""
	}
	if plain := findPart(payload, "text/plain", logger); plain != "" {
		return plain
	}
	if html := findPart(payload, "text/html", logger); html != "" {
		return htmlToText(html)
	}
	return ""
}

func findPart(part *gmail.MessagePart, mimeType string, logger *slog.Logger) string {
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		decoded, err := decodePartData(part.Body.Data)
		if err != nil {
			logger.Warn("skipping undecodable message part", "mime_type", mimeType, "error", err)
		} else {
			return decoded
		}
	}
	for _, child := range part.Parts {
		if found := findPart(child, mimeType, logger); found != "" {
			return found
		}
	}
	return ""
}

// decodePartData decodes a Gmail part body. The API serves unpadded
// base64url; padded input is accepted as well.
func decodePartData(data string) (string, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(data)
	if err == nil {
		return string(decoded), nil
	}
	if padded, paddedErr := base64.URLEncoding.DecodeString(data); paddedErr == nil {
		return string(padded), nil
	}
	return "", err
}

// htmlToText strips markup from an HTML body. Falls back to the raw input
// when parsing fails.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("style, script").Remove()
	return strings.TrimSpace(doc.Text())
}
