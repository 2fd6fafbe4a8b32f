// Package cache keeps a manifest of the build files written for each
// configuration.
//
// Ninja re-reads its build files whenever their modification time changes,
// so rewriting identical content on every run forces needless manifest
// reloads. The manifest lets the generator:
//
//  1. Skip writing a file whose content hash matches the last recorded write
//  2. Remove files a previous run emitted that are no longer generated
//
// Metadata is stored in BoltDB under the output directory.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/logger"
	"github.com/node4good/gypninja/internal/sys"
)

const (
	// DefaultDir is the manifest directory created inside the output directory
	DefaultDir = ".gyp-ninja"

	// dbName is the BoltDB file inside DefaultDir
	dbName = "state.db"

	// bucketName is the BoltDB bucket holding one entry per emitted file
	bucketName = "files"
)

// Cache is a BoltDB-backed manifest of emitted files.
type Cache struct {
	db   *bbolt.DB
	root string
	log  *zap.SugaredLogger

	now func() time.Time
}

// Open opens or creates the manifest of outDir.
func Open(outDir string) (*Cache, error) {
	root := filepath.Join(outDir, DefaultDir)

	// Ensure manifest directory exists
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.IO(err, root)
	}

	dbPath := filepath.Join(root, dbName)
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.IO(errors.Wrap(err, "failed to open build file manifest"), dbPath)
	}

	// Create bucket if it doesn't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.IO(errors.Wrap(err, "failed to create manifest bucket"), dbPath)
	}

	return &Cache{
		db:   db,
		root: root,
		log:  logger.ComponentLogger("cache"),
		now:  time.Now,
	}, nil
}

// Close closes the manifest database
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}

	return nil
}

// Root is the manifest directory.
func (c *Cache) Root() string {
	return c.root
}

// Get returns the entry recorded for path, or nil when there is none.
func (c *Cache) Get(path string) (*Entry, error) {
	var entry *Entry
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(key(path)))
		if data == nil {
			return nil
		}

		entry = &Entry{}
		return json.Unmarshal(data, entry)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest entry for %s", path)
	}

	return entry, nil
}

// WriteIfChanged writes data to path unless the last recorded write had the
// same content and the file on disk still holds it. It reports whether the
// file was written.
func (c *Cache) WriteIfChanged(fsys sys.FS, path string, data []byte, configuration string) (bool, error) {
	hash := HashBytes(data)

	entry, err := c.Get(path)
	if err != nil {
		return false, err
	}

	if entry != nil && entry.Hash == hash && entry.Configuration == configuration {
		if current, err := HashFile(fsys, path); err == nil && current == hash {
			return false, nil
		}
	}

	if err := sys.WriteFileAtomic(fsys, path, data, 0o644); err != nil {
		return false, err
	}

	err = c.put(Entry{
		Path:          path,
		Hash:          hash,
		Configuration: configuration,
		Timestamp:     c.now(),
	})
	if err != nil {
		return true, err
	}

	return true, nil
}

func (c *Cache) put(entry Entry) error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return tx.Bucket([]byte(bucketName)).Put([]byte(key(entry.Path)), data)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to record %s", entry.Path)
	}

	return nil
}

// Prune removes the files recorded for configuration that are not in keep,
// and forgets them. Files already gone are only forgotten. The removed paths
// are returned sorted.
func (c *Cache) Prune(fsys sys.FS, configuration string, keep []string) ([]string, error) {
	kept := make(map[string]bool, len(keep))
	for _, p := range keep {
		kept[key(p)] = true
	}

	var stale []Entry
	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			if kept[string(k)] {
				return nil
			}

			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return errors.Wrapf(err, "corrupt manifest entry %s", k)
			}
			if entry.Configuration == configuration {
				stale = append(stale, entry)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, entry := range stale {
		if fsys.Exists(entry.Path) {
			if err := fsys.Remove(entry.Path); err != nil {
				return removed, errors.IO(err, entry.Path)
			}
			removed = append(removed, entry.Path)
			c.log.Debugw("Removed stale build file",
				logger.FieldPath, entry.Path,
				logger.FieldConfiguration, configuration,
			)
		}

		err := c.db.Update(func(tx *bbolt.Tx) error {
			return tx.Bucket([]byte(bucketName)).Delete([]byte(key(entry.Path)))
		})
		if err != nil {
			return removed, errors.Wrapf(err, "failed to forget %s", entry.Path)
		}
	}

	sort.Strings(removed)
	return removed, nil
}

// Clear forgets every recorded file. Files on disk are left alone.
func (c *Cache) Clear() error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
	if err != nil {
		return errors.Wrap(err, "failed to clear build file manifest")
	}

	return nil
}

// Stats returns the number of recorded files per configuration.
func (c *Cache) Stats() (map[string]int, error) {
	counts := map[string]int{}

	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(_, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}

			counts[entry.Configuration]++
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read build file manifest")
	}

	return counts, nil
}

// key normalizes path separators so both spellings share an entry.
func key(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
