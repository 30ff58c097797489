package config

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

const pollInterval = time.Second * 3

// TreeWatcher signals a channel whenever something under a directory tree
// changes, so watch mode can re-render the diagram.
type TreeWatcher struct {
}

// New starts watching the tree rooted at dir and sends on ch for every
// observed change.
func (tw TreeWatcher) New(ch chan bool, dir string) {
	treeWatcher(ch, dir)
}

func treeWatcher(changed chan bool, dir string) {
	go func() {
		lastSeen := newestModTime(dir)
		for {
			// sleep first so we aren't always banging on the file system
			time.Sleep(pollInterval)
			latest := newestModTime(dir)
			if latest.After(lastSeen) {
				lastSeen = latest
				changed <- true
			}
		}
	}()
}

// newestModTime walks the tree and returns the most recent modification
// time it finds. Walk errors are logged and treated as "no change".
func newestModTime(dir string) time.Time {
	newest := time.Time{}
	err := filepath.Walk(dir, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.ModTime().After(newest) {
			newest = f.ModTime()
		}
		return nil
	})
	if err != nil {
		log.Println("Error accessing manifest dir", err)
	}
	return newest
}
