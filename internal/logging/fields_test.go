package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestWithCommon(t *testing.T) {
	cases := []struct {
		name    string
		service string
		version string
		want    []string
	}{
		{"both", "scorebug", "v1", []string{FieldService, FieldVersion}},
		{"service only", "scorebug", "", []string{FieldService}},
		{"neither", "", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attrs := WithCommon([]slog.Attr{slog.String(FieldGameID, "84123")}, tc.service, tc.version)
			if len(attrs) != 1+len(tc.want) {
				t.Fatalf("expected %d attrs, got %+v", 1+len(tc.want), attrs)
			}
			if attrs[0].Key != FieldGameID {
				t.Fatalf("expected existing attrs first, got %+v", attrs)
			}
			for i, key := range tc.want {
				if attrs[i+1].Key != key {
					t.Fatalf("expected %s at %d, got %+v", key, i+1, attrs)
				}
			}
		})
	}
}

func TestNewLoggerCarriesCommonFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Service: "scorebug", Version: "dev", Output: &buf})
	Info(logger, "play applied", FieldPlay, 12)

	out := buf.String()
	for _, want := range []string{"service=scorebug", "version=dev", "play=12"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}
