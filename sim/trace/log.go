package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Log collects the ordered records of one run.
type Log struct {
	Records []Record
	nextSeq uint64
}

// NewLog creates an empty run log.
func NewLog() *Log {
	return &Log{Records: make([]Record, 0)}
}

// Append adds a record, stamping its sequence number.
func (l *Log) Append(r Record) {
	l.nextSeq++
	r.Seq = l.nextSeq
	l.Records = append(l.Records, r)
}

// Faults returns the records whose outcome is a fault.
func (l *Log) Faults() []Record {
	var out []Record
	for _, r := range l.Records {
		if strings.HasPrefix(r.Outcome, FaultPrefix) {
			out = append(out, r)
		}
	}
	return out
}

// WriteJSONL writes the log as JSON Lines, one record per line. The
// encoding is deterministic, so two identical runs produce byte-identical
// output.
func (l *Log) WriteJSONL(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, r := range l.Records {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", r.Seq, err)
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadJSONL parses a JSON Lines run log.
func ReadJSONL(r io.Reader) (*Log, error) {
	l := NewLog()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		l.Records = append(l.Records, rec)
		if rec.Seq > l.nextSeq {
			l.nextSeq = rec.Seq
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return l, nil
}
