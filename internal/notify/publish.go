package notify

import (
	"os"
	"path/filepath"
)

// Publisher writes the exported preview calendar into the storage dir so
// calendar clients can subscribe to the file. Export is one-way; nothing
// is read back.
type Publisher struct {
	path string
}

// NewPublisher targets <storageDir>/upcoming.ics.
func NewPublisher(storageDir string) *Publisher {
	return &Publisher{path: filepath.Join(storageDir, "upcoming.ics")}
}

// Path returns the publish target.
func (p *Publisher) Path() string {
	return p.path
}

// Publish writes the serialized calendar atomically.
func (p *Publisher) Publish(serialized string) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".goaltick-ics-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(serialized); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, p.path)
}
