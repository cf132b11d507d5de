package cache

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PulseFileSubDir is where fetched remote pulse files land inside the
// cache directory.
const PulseFileSubDir = "pulsecache/"

type Cache struct {
	Location string
}

// PulseFileCacheName forms the cache file name for a remote pulse file.
func PulseFileCacheName(bucket string, objectName string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_")
	return replacer.Replace(filepath.Join(bucket, objectName))
}

// GetItemFromCache opens a previously cached file. The caller owns the
// returned handle.
func (c *Cache) GetItemFromCache(cacheFileName string, subDir string) (*os.File, error) {
	fullPath := filepath.Join(c.Location, subDir, cacheFileName)
	return os.Open(fullPath)
}

// PutItemInCache stores data under `cacheFileName` within `subDir` and
// returns the full path of the written file.
func (c *Cache) PutItemInCache(cacheFileName string, subDir string, data []byte) (string, error) {
	fullPath := filepath.Join(c.Location, subDir, cacheFileName)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", err
	}
	return fullPath, nil
}

// CheckCache runs a check every `checkInterval` seconds and purges the
// oldest cached pulse file whenever the current cache size exceeds
// `maxBytes`.
func CheckCache(cachePath string, checkInterval int, maxBytes int64) {
	nextRun := time.Now()
	for {
		if nextRun.Before(time.Now()) {
			entries, err := os.ReadDir(cachePath)
			if err != nil {
				log.Println("CheckCache Error: ", err)
				time.Sleep(5 * time.Second)
				continue
			}

			var currentBytes int64 = 0
			var oldest os.FileInfo
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				info, err := entry.Info()
				if err != nil {
					continue
				}
				currentBytes += info.Size()
				if oldest == nil || info.ModTime().Before(oldest.ModTime()) {
					oldest = info
				}
			}
			if currentBytes > maxBytes && oldest != nil {
				path := filepath.Join(cachePath, oldest.Name())
				if strings.HasSuffix(oldest.Name(), ".bin") {
					log.Println("Cache over Maximum. Removing Old File", oldest.Name())
					if err := os.Remove(path); err != nil {
						log.Println("Error removing cache file", err)
					}
				} else {
					log.Println("Skipping non pulse file in cache directory", oldest.Name())
					nextRun = nextRun.Add(time.Second * time.Duration(checkInterval))
				}
			} else {
				nextRun = nextRun.Add(time.Second * time.Duration(checkInterval))
			}
		} else {
			time.Sleep(5 * time.Second)
		}
	}
}
