package response

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/devwelkin/hermes-lite/internal/headers"
)

var fixedTime = time.Date(2026, time.October, 17, 20, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func TestWriteHeader(t *testing.T) {
	tests := []struct {
		name   string
		status StatusCode
		ctype  string
		want   string
	}{
		{
			name:   "ok",
			status: StatusOK,
			ctype:  "text/html",
			want: "HTTP/1.1 200 OK\n" +
				"Date: Sat, 17 Oct 2026 20:04:05 GMT\n" +
				"Server: SERVER_IDENTIFICATION\n" +
				"Connection: close\n" +
				"Content-Type: text/html\n" +
				"\n",
		},
		{
			name:   "not found",
			status: StatusNotFound,
			ctype:  "text/html",
			want: "HTTP/1.1 404 FileNotFound\n" +
				"Date: Sat, 17 Oct 2026 20:04:05 GMT\n" +
				"Server: SERVER_IDENTIFICATION\n" +
				"Connection: close\n" +
				"Content-Type: text/html\n" +
				"\n",
		},
		{
			name:   "empty content type",
			status: StatusOK,
			ctype:  "",
			want: "HTTP/1.1 200 OK\n" +
				"Date: Sat, 17 Oct 2026 20:04:05 GMT\n" +
				"Server: SERVER_IDENTIFICATION\n" +
				"Connection: close\n" +
				"Content-Type: text/html\n" +
				"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf).WithIdentity("SERVER_IDENTIFICATION").WithClock(fixedClock)
			if err := w.WriteHeader(tt.status, tt.ctype); err != nil {
				t.Fatalf("WriteHeader: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got\n%q\nwant\n%q", buf.String(), tt.want)
			}
		})
	}
}

func TestDateIsGMT(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	h := DefaultHeaders("x", "text/plain", time.Date(2026, time.October, 18, 5, 4, 5, 0, loc))

	date, err := h.Get("Date")
	if err != nil {
		t.Fatal(err)
	}
	if date != "Sat, 17 Oct 2026 20:04:05 GMT" {
		t.Errorf("date = %q", date)
	}
	if _, err := h.Get("Content-Length"); err == nil {
		t.Error("Content-Length must not be set")
	}
}

func TestWriterBodyIsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf).WithClock(fixedClock)
	if err := w.WriteHeader(StatusOK, "text/plain"); err != nil {
		t.Fatal(err)
	}
	body := "line one\r\nline two\n\nno newline"
	if _, err := w.WriteBody([]byte(body)); err != nil {
		t.Fatal(err)
	}

	head, got, ok := strings.Cut(buf.String(), "\n\n")
	if !ok {
		t.Fatal("no header terminator")
	}
	if strings.Contains(head, "Content-Length") {
		t.Error("unexpected Content-Length")
	}
	if got != body {
		t.Errorf("body = %q, want %q", got, body)
	}
}

func TestWriterStateMachine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if _, err := w.WriteBody([]byte("x")); !errors.Is(err, ErrWrongState) {
		t.Errorf("body before status: %v", err)
	}
	if err := w.WriteHeaders(headers.NewHeaders()); !errors.Is(err, ErrWrongState) {
		t.Errorf("headers before status: %v", err)
	}
	if err := w.WriteStatusLine(StatusOK); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteStatusLine(StatusOK); !errors.Is(err, ErrWrongState) {
		t.Errorf("second status line: %v", err)
	}
	if _, err := w.WriteBody([]byte("x")); !errors.Is(err, ErrWrongState) {
		t.Errorf("body before headers: %v", err)
	}
	if err := w.WriteHeaders(headers.NewHeaders()); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("b")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "HTTP/1.1 200 OK\n\nab" {
		t.Errorf("got %q", buf.String())
	}
}

type failWriter struct{ after int }

func (f *failWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, errors.New("broken pipe")
	}
	f.after--
	return len(p), nil
}

func TestWriterWrapsStreamErrors(t *testing.T) {
	w := NewWriter(&failWriter{after: 0})
	if err := w.WriteStatusLine(StatusOK); !errors.Is(err, ErrStreamIO) {
		t.Errorf("status: %v", err)
	}

	w = NewWriter(&failWriter{after: 1})
	if err := w.WriteHeader(StatusOK, "text/html"); !errors.Is(err, ErrStreamIO) {
		t.Errorf("headers: %v", err)
	}
}

func TestStatusLine(t *testing.T) {
	if got := StatusLine(StatusNotFound); got != "HTTP/1.1 404 FileNotFound" {
		t.Errorf("got %q", got)
	}
	if got := StatusLine(500); got != "HTTP/1.1 500" {
		t.Errorf("got %q", got)
	}
}
