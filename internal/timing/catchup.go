package timing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	appLog "goaltick/internal/log"
	"goaltick/internal/model"
)

// CatchUp tracks the calendar dates for which the daily-summary trigger
// has not yet been confirmed. The set is read from a line-oriented date
// file at construction, with the current date always added so a fresh date
// gets at least one attempt, and checkpointed back to disk after every
// mutation so an ungraceful exit loses nothing.
type CatchUp struct {
	mu    sync.Mutex
	path  string
	dates map[string]bool
}

// NewCatchUp loads the persisted set from path. Lines that do not parse as
// dates are logged and dropped. A missing file is a clean empty set.
func NewCatchUp(path string, now time.Time) (*CatchUp, error) {
	if path == "" {
		return nil, errors.New("timing: catch-up path is empty")
	}

	c := &CatchUp{
		path:  path,
		dates: map[string]bool{},
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("timing: read catch-up file: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, perr := time.Parse(model.GroupNameLayout, line); perr != nil {
			appLog.Error("catch-up: dropping unparseable line", perr, "line", line)
			continue
		}
		c.dates[line] = true
	}

	c.dates[model.GroupNameFor(now)] = true

	if err := c.checkpoint(); err != nil {
		return nil, err
	}
	return c, nil
}

// Ensure adds the date to the set if absent, so a day that rolls over
// while the process keeps running is still eligible for an attempt.
func (c *CatchUp) Ensure(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dates[date] {
		return
	}
	c.dates[date] = true
	if err := c.checkpoint(); err != nil {
		appLog.Error("catch-up: checkpoint failed", err, "path", c.path)
	}
}

// SetDone removes the date after a confirmed success.
func (c *CatchUp) SetDone(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dates[date] {
		return
	}
	delete(c.dates, date)
	if err := c.checkpoint(); err != nil {
		appLog.Error("catch-up: checkpoint failed", err, "path", c.path)
	}
}

// Contains reports whether the date is still unconfirmed.
func (c *CatchUp) Contains(date string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dates[date]
}

// Dates returns the unconfirmed dates, sorted ascending.
func (c *CatchUp) Dates() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.dates))
	for d := range c.dates {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Close writes the current set back to disk.
func (c *CatchUp) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkpoint()
}

// checkpoint serializes the set, one date per line, atomically. Callers
// hold c.mu.
func (c *CatchUp) checkpoint() error {
	dates := make([]string, 0, len(c.dates))
	for d := range c.dates {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	body := strings.Join(dates, "\n")
	if body != "" {
		body += "\n"
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".goaltick-catchup-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, c.path)
}
