package webhook

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/nsqio/go-diskqueue"
	"github.com/rs/zerolog/log"
)

// NewQueue creates the disk backed delivery queue. The HTTP handler
// acknowledges immediately and the queue absorbs bursts of completed scans.
func NewQueue(queueFolder string) (diskqueue.Interface, string) {
	log.Debug().Msg("Setting up delivery queue on disk")

	queueDirectory := queueFolder
	if len(queueFolder) > 0 {
		cwd, err := os.Getwd()
		if err != nil {
			log.Fatal().Err(err).Msg("Could not determine CWD")
		}
		relative := filepath.Join(cwd, queueDirectory)
		absPath, err := filepath.Abs(relative)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed parsing absolute path")
		}
		queueDirectory = absPath
	}

	tmpfile, err := os.CreateTemp(queueDirectory, "encephalon-webhook-queue-db-")
	if err != nil {
		log.Fatal().Err(err).Msg("Creating temp DB file failed")
	}
	defer os.Remove(tmpfile.Name())

	return diskqueue.New(tmpfile.Name(), queueDirectory, 512, 0, math.MaxInt32, 2500, 2*time.Second, func(lvl diskqueue.LogLevel, f string, args ...interface{}) {
		log.Trace().Msg("Queue log: " + fmt.Sprintf(lvl.String()+": "+f, args...))
	}), tmpfile.Name()
}

// CleanupQueue deletes the queue and its database files.
func CleanupQueue(queue diskqueue.Interface, queueFileName string) {
	log.Debug().Msg("Cleaning up delivery queue")
	err := queue.Delete()
	if err != nil {
		log.Error().Err(err).Msg("Error deleting queue on shutdown")
	}

	files, err := filepath.Glob(queueFileName + "*")
	if err != nil {
		log.Error().Err(err).Msg("Error listing queue database files")
		return
	}
	for _, f := range files {
		err := os.Remove(f)
		if err != nil {
			log.Error().Err(err).Str("file", f).Msg("Error deleting database file")
			continue
		}
		log.Trace().Str("file", f).Msg("Deleted")
	}
	_ = os.Remove(queueFileName)
}
