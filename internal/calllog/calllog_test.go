package calllog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestRecorderWritesJSONLines(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "calls.jsonl")
	rec, err := NewRecorder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRecorder returned error: %v", err)
	}

	rec.Record(Entry{
		Credential: "sso-token-abcdef-1234",
		Model:      "grok-imagine-0.9",
		Success:    true,
		StatusCode: 200,
		ElapsedMS:  1500,
		MediaURLs:  []string{"https://assets.test/images/u-1-video.mp4"},
	})
	rec.Record(Entry{
		Model:      "grok-imagine-0.9",
		Success:    false,
		StatusCode: 500,
		Error:      "upstream exploded",
	})
	if err := rec.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("decode line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Timestamp == 0 {
		t.Fatal("timestamp not filled in")
	}
	if entries[0].Credential != "sso-***1234" {
		t.Fatalf("credential = %q, want masked", entries[0].Credential)
	}
	if entries[1].Success || entries[1].Error != "upstream exploded" {
		t.Fatalf("failure entry mismatch: %+v", entries[1])
	}
}

func TestRecordAfterCloseIsDropped(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	rec, err := NewRecorder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRecorder returned error: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	// Workers are not joined on shutdown, so a straggler may still record
	// after the sink is closed; that must be a silent no-op.
	rec.Record(Entry{Model: "grok-imagine-0.9", Success: true})

	if err := rec.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(raw) != 0 {
		t.Fatalf("log contains %q, want empty", raw)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	t.Parallel()
	var rec *Recorder
	rec.Record(Entry{Model: "grok-imagine-0.9"})
	if err := rec.Close(); err != nil {
		t.Fatalf("nil Close returned error: %v", err)
	}
}

func TestMaskCredential(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "short", input: "abc123", want: "***"},
		{name: "boundary", input: "12345678", want: "***"},
		{name: "long", input: "sso-token-abcdef", want: "sso-***cdef"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := maskCredential(tc.input); got != tc.want {
				t.Fatalf("maskCredential(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
