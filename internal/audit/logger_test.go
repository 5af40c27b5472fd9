package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"security-core/engine/internal/audit/domain"
)

func TestLogger_Append_LineFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	payload := map[string]any{"tillId": "T1", "itemsScanned": 3}
	if err := l.Append(context.Background(), domain.EventPos, payload); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	line := strings.TrimSuffix(string(data), "\n")
	i := strings.LastIndex(line, " #")
	if i < 0 {
		t.Fatalf("line %q has no hash separator", line)
	}
	jsonPart, hashPart := line[:i], line[i+2:]

	sum := sha256.Sum256([]byte(jsonPart))
	if got := hex.EncodeToString(sum[:]); got != hashPart {
		t.Errorf("stored hash = %s, recomputed %s", hashPart, got)
	}

	var rec struct {
		Timestamp time.Time       `json:"timestamp"`
		Event     string          `json:"event"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal([]byte(jsonPart), &rec); err != nil {
		t.Fatalf("unmarshal line: %v", err)
	}
	if rec.Event != domain.EventPos {
		t.Errorf("event = %q, want %q", rec.Event, domain.EventPos)
	}
	if rec.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
	// Serialized field order is part of the format.
	if !strings.HasPrefix(jsonPart, `{"timestamp":`) {
		t.Errorf("line should start with the timestamp field, got %q", jsonPart)
	}
}

func TestLogger_Append_MultipleLinesVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	ctx := context.Background()
	events := []struct {
		event   string
		payload map[string]any
	}{
		{domain.EventCamera, map[string]any{"tillId": "T1", "estimatedItemsBagged": 5}},
		{domain.EventPos, map[string]any{"tillId": "T1", "itemsScanned": 3}},
		{domain.EventAlert, map[string]any{"tillId": "T1", "delta": 2}},
	}
	for _, e := range events {
		if err := l.Append(ctx, e.event, e.payload); err != nil {
			t.Fatalf("Append %s: %v", e.event, err)
		}
	}

	report, err := VerifyFile(path)
	if err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}
	if report.Lines != 3 {
		t.Errorf("Lines = %d, want 3", report.Lines)
	}
	if !report.OK() {
		t.Errorf("verification failed: %v", report.Problems)
	}
}

func TestLogger_Append_ClosedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l.Close()

	err = l.Append(context.Background(), domain.EventPos, map[string]any{"tillId": "T1"})
	if err == nil {
		t.Fatal("Append after Close should fail")
	}
	if !errors.Is(err, ErrWriteFailed) {
		t.Errorf("error = %v, want ErrWriteFailed wrap", err)
	}
}
