// Package source feeds messages into a buffered client from external inputs.
// The directory spool source turns files dropped into a directory into
// buffered sends, for integrating producers that can only write files.
package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bufq/bufq/internal/domain"
	"github.com/bufq/bufq/pkg/log"
)

// Sender buffers one message. Satisfied by the bufq client.
type Sender interface {
	Send(ctx context.Context, msg domain.Message) error
}

// DirSource watches a spool directory and buffers the content of every file
// that appears in it as one message body. Files are removed after they are
// buffered; dotfiles and subdirectories are ignored.
type DirSource struct {
	dir      string
	sender   Sender
	logger   log.Logger
	settleBy time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// settleDelay is how long a file must be quiet before it is read, so
// writers that create-then-write are not read half-written.
const settleDelay = 100 * time.Millisecond

// NewDirSource creates a spool source for the given directory.
func NewDirSource(dir string, sender Sender, logger log.Logger) *DirSource {
	return &DirSource{
		dir:      dir,
		sender:   sender,
		logger:   logger,
		settleBy: settleDelay,
		pending:  make(map[string]*time.Timer),
	}
}

// Run watches the directory until the context is done. Files already present
// at startup are buffered first, in name order.
func (d *DirSource) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(d.dir); err != nil {
		return err
	}

	if err := d.ScanOnce(ctx); err != nil {
		d.logger.Error("spool scan failed", log.Err(err))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !d.eligible(event.Name) {
				continue
			}
			d.settle(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Error("spool watcher error", log.Err(err))
		}
	}
}

// ScanOnce buffers every eligible file currently in the directory, in name
// order, and removes the consumed files.
func (d *DirSource) ScanOnce(ctx context.Context) error {
	dirEntries, err := os.ReadDir(d.dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		path := filepath.Join(d.dir, de.Name())
		if d.eligible(path) {
			names = append(names, path)
		}
	}
	sort.Strings(names)
	for _, path := range names {
		d.consume(ctx, path)
	}
	return nil
}

// settle schedules a consume after the file has been quiet for the settle
// delay; repeated writes push the timer back.
func (d *DirSource) settle(ctx context.Context, path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.pending[path]; ok {
		t.Stop()
	}
	d.pending[path] = time.AfterFunc(d.settleBy, func() {
		d.mu.Lock()
		delete(d.pending, path)
		d.mu.Unlock()
		d.consume(ctx, path)
	})
}

// consume reads a spool file, buffers its content as one message, and
// removes the file. The file's name is carried as a message attribute.
func (d *DirSource) consume(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger.Error("spool read failed", log.String("file", path), log.Err(err))
		}
		return
	}

	msg := domain.Message{
		Body: string(data),
		Attributes: map[string]domain.Attribute{
			"source_file": {DataType: "String", StringValue: filepath.Base(path)},
		},
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error("spool send failed", log.String("file", path), log.Err(err))
		return
	}

	if err := os.Remove(path); err != nil {
		d.logger.Warn("spool remove failed", log.String("file", path), log.Err(err))
	}
	d.logger.Debug("spooled file buffered",
		log.String("file", filepath.Base(path)),
		log.Int("bytes", len(data)))
}

// eligible filters out dotfiles and temporary files still being written by
// conventions like foo.txt.tmp.
func (d *DirSource) eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return !strings.HasSuffix(base, ".tmp")
}
