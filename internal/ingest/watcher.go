package ingest

import (
	"context"
	"log"

	"github.com/fsnotify/fsnotify"

	"github.com/construdata/precobase/internal/spreadsheet"
)

// eventBuffer bounds the queue between the filesystem notifier and the
// processing loop. When the queue is full, events drop; the periodic rescan
// picks the files up later.
const eventBuffer = 256

// Watcher turns filesystem notifications into a bounded stream of candidate
// paths for the orchestrator.
type Watcher struct {
	fsw    *fsnotify.Watcher
	events chan string
}

func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &Watcher{
		fsw:    fsw,
		events: make(chan string, eventBuffer),
	}, nil
}

// Events yields paths of supported files that were created or written.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Run pumps notifications until the context ends. It never blocks on a slow
// consumer; overflow is dropped and recovered by the rescan loop.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !spreadsheet.Supported(event.Name) {
				continue
			}
			select {
			case w.events <- event.Name:
			default:
				log.Printf("watch queue full, dropping %s", event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watch error: %v", err)
		}
	}
}
