package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"security-core/engine/internal/audit/domain"
)

// Problem is one integrity violation found by Verify.
type Problem struct {
	Line   int
	Kind   string // "format", "hash", "timestamp", "orphan-alert"
	Detail string
}

func (p Problem) String() string {
	return fmt.Sprintf("line %d: %s: %s", p.Line, p.Kind, p.Detail)
}

// Report summarizes a verification pass over an audit log.
type Report struct {
	Lines    int
	Problems []Problem
}

// OK reports whether the log passed every check.
func (r *Report) OK() bool { return len(r.Problems) == 0 }

// verifiedRecord is the subset of a record needed for ordering checks.
type verifiedRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	Payload   struct {
		TillID string `json:"tillId"`
	} `json:"payload"`
}

// VerifyFile runs Verify over the audit log at path.
func VerifyFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	defer f.Close()
	return Verify(f)
}

// Verify re-checks every stored line: the hash must match the recomputed
// SHA-256 of the line's JSON, timestamps must be non-decreasing, and every
// security.alert record must be preceded by both a camera and a POS event for
// its till. It returns a Report of all violations; the error return is only
// for read failures.
func Verify(r io.Reader) (*Report, error) {
	rep := &Report{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var prev time.Time
	seenCamera := map[string]bool{}
	seenPos := map[string]bool{}

	for sc.Scan() {
		rep.Lines++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		i := strings.LastIndex(line, " #")
		if i < 0 {
			rep.Problems = append(rep.Problems, Problem{rep.Lines, "format", "missing hash separator"})
			continue
		}
		payload, stored := line[:i], line[i+2:]
		if got := hashHex([]byte(payload)); got != stored {
			rep.Problems = append(rep.Problems, Problem{rep.Lines, "hash", fmt.Sprintf("stored %s, recomputed %s", stored, got)})
		}
		var rec verifiedRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			rep.Problems = append(rep.Problems, Problem{rep.Lines, "format", "payload is not valid JSON: " + err.Error()})
			continue
		}
		if !prev.IsZero() && rec.Timestamp.Before(prev) {
			rep.Problems = append(rep.Problems, Problem{rep.Lines, "timestamp", fmt.Sprintf("%s is before previous record %s", rec.Timestamp.Format(time.RFC3339Nano), prev.Format(time.RFC3339Nano))})
		}
		prev = rec.Timestamp

		switch rec.Event {
		case domain.EventCamera:
			seenCamera[rec.Payload.TillID] = true
		case domain.EventPos:
			seenPos[rec.Payload.TillID] = true
		case domain.EventAlert:
			if !seenCamera[rec.Payload.TillID] || !seenPos[rec.Payload.TillID] {
				rep.Problems = append(rep.Problems, Problem{rep.Lines, "orphan-alert", fmt.Sprintf("alert for till %q has no prior camera/pos pair", rec.Payload.TillID)})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("audit: read: %w", err)
	}
	return rep, nil
}
