package cronjobs

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"go-homereel/cache"
)

// staleAfter is how old a render staging dir has to be before the
// sweeper removes it. A crashed encode leaves its dir behind; anything
// from a live run is far younger than this.
const staleAfter = 24 * time.Hour

// flushMemoryCache copies the memory tier into the disk store so warm
// imagery survives a restart.
func flushMemoryCache(mem *cache.MemoryStore, disk *cache.DiskStore) {
	ctx := context.Background()
	snapshot := mem.Snapshot()

	flushed := 0
	for fp, data := range snapshot {
		if _, ok, err := disk.Get(ctx, fp); err == nil && ok {
			continue
		}
		if err := disk.Put(ctx, fp, data); err != nil {
			log.Printf("CronJob: flush %s: %v", fp[:12], err)
			continue
		}
		flushed++
	}
	if flushed > 0 {
		log.Printf("CronJob: flushed %d imagery entries to disk", flushed)
	}
}

// sweepStaleRenderDirs removes render staging dirs older than staleAfter.
func sweepStaleRenderDirs(workDir string) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		log.Printf("CronJob: read render workdir: %v", err)
		return
	}

	cutoff := time.Now().Add(-staleAfter)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "render-") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(workDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			log.Printf("CronJob: remove stale dir %s: %v", path, err)
			continue
		}
		log.Printf("CronJob: removed stale render dir %s", entry.Name())
	}
}

// InitCronJobs schedules the maintenance jobs: a cache flush every 15
// minutes and an hourly sweep of abandoned render staging dirs.
func InitCronJobs(mem *cache.MemoryStore, disk *cache.DiskStore, renderWorkDir string) *cron.Cron {
	log.Println("\nStarting Cron Jobs -------------------------------------------------------")
	c := cron.New()

	if mem != nil && disk != nil {
		_, err := c.AddFunc("*/15 * * * *", func() {
			log.Println("\nCronJob: Imagery Cache Flush Running")
			flushMemoryCache(mem, disk)
		})
		if err != nil {
			log.Println("Error scheduling Imagery Cache Flush:", err)
		}
	}

	_, err := c.AddFunc("0 * * * *", func() {
		log.Println("\nCronJob: Stale Render Sweep Running")
		sweepStaleRenderDirs(renderWorkDir)
	})
	if err != nil {
		log.Println("Error scheduling Stale Render Sweep:", err)
	}

	c.Start()
	return c
}
