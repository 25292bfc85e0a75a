package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/refinestack/refinestack/internal/stages"
	"github.com/refinestack/refinestack/pkg/types"
)

// excerptLen bounds the redacted text excerpt included in each log line.
const excerptLen = 50

// runLog appends one human-auditable line per processed record to the
// configured log file. Only redacted text ever reaches the log.
type runLog struct {
	f   *os.File
	now func() time.Time
}

// openRunLog opens (or creates) the run log for appending.
func openRunLog(path string) (*runLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log %q: %w", path, err)
	}
	return &runLog{f: f, now: time.Now}, nil
}

// Record writes one audit line: sequential id, chosen action, reward, and a
// redacted text excerpt.
func (l *runLog) Record(id int, action types.Action, reward float64, redacted string) error {
	line := fmt.Sprintf("%s INFO processed id=%d action=%s reward=%g text=%q\n",
		l.now().UTC().Format(time.RFC3339), id, action, reward,
		stages.Excerpt(redacted, excerptLen))
	if _, err := l.f.WriteString(line); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *runLog) Close() error { return l.f.Close() }
