package mailer

import (
	"encoding/base64"
	"io"
	"log/slog"
	"strings"
	"testing"

	"google.golang.org/api/gmail/v1"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func encodePart(mimeType, content string) *gmail.MessagePart {
	// The Gmail API serves part data as unpadded base64url.
	return &gmail.MessagePart{
		MimeType: mimeType,
		Body:     &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte(content))},
	}
}

func TestExtractBodyPrefersPlainText(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			encodePart("text/html", "<p>html version</p>"),
			encodePart("text/plain", "plain version"),
		},
	}
	if got := extractBody(payload, testLogger()); got != "plain version" {
		t.Errorf("expected plain text part, got %q", got)
	}
}

func TestExtractBodyFallsBackToHTML(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			encodePart("text/html", "<html><body><p>Sounds good,</p><p>Dana</p></body></html>"),
		},
	}
	got := extractBody(payload, testLogger())
	if !strings.Contains(got, "Sounds good,") || strings.Contains(got, "<p>") {
		t.Errorf("expected stripped html text, got %q", got)
	}
}

func TestExtractBodyNestedParts(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					encodePart("text/plain", "nested plain"),
				},
			},
		},
	}
	if got := extractBody(payload, testLogger()); got != "nested plain" {
		t.Errorf("expected nested part, got %q", got)
	}
}

func TestExtractBodyAcceptsBothPaddings(t *testing.T) {
	body := "I am interested, tell me more"
	cases := []struct {
		name string
		data string
	}{
		{"unpadded", base64.RawURLEncoding.EncodeToString([]byte(body))},
		{"padded", base64.URLEncoding.EncodeToString([]byte(body))},
	}
	for _, tc := range cases {
		payload := &gmail.MessagePart{
			MimeType: "text/plain",
			Body:     &gmail.MessagePartBody{Data: tc.data},
		}
		if got := extractBody(payload, testLogger()); got != body {
			t.Errorf("%s: expected %q, got %q", tc.name, body, got)
		}
	}
}

func TestExtractBodySkipsUndecodablePart(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: "!!!not base64!!!"},
			},
			encodePart("text/html", "<p>readable fallback</p>"),
		},
	}
	if got := extractBody(payload, testLogger()); got != "readable fallback" {
		t.Errorf("expected html fallback after decode failure, got %q", got)
	}
}

func TestExtractBodyEmptyPayload(t *testing.T) {
	if got := extractBody(nil, testLogger()); got != "" {
		t.Errorf("expected empty string for nil payload, got %q", got)
	}
}

func TestExtractAddress(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Dana Reyes <dana@acme.example>", "dana@acme.example"},
		{"dana@acme.example", "dana@acme.example"},
		{"  <dana@acme.example>  ", "dana@acme.example"},
	}
	for _, tc := range cases {
		if got := extractAddress(tc.in); got != tc.want {
			t.Errorf("extractAddress(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
