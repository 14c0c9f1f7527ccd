package index

import (
	"log/slog"
	"strings"

	"github.com/starford/termblog/internal/catalog"
)

// SyncStats counts what a Sync changed.
type SyncStats struct {
	Indexed int
	Removed int
	Skipped int
}

// Sync brings the index up to date with a catalog snapshot:
//   - new/changed posts are read and upserted
//   - posts missing from the catalog are deleted from the index
func Sync(db PostIndex, c *catalog.Catalog, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats

	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	live := make(map[string]struct{})
	for _, e := range c.Posts() {
		live[e.Slug] = struct{}{}
		if checksums[e.Slug] == e.Checksum {
			stats.Skipped++
			continue
		}
		p, err := c.ReadPost(e)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", e.Path), slog.String("error", err.Error()))
			continue
		}
		row := PostRow{
			Slug:     e.Slug,
			Path:     e.Path,
			Title:    e.Meta.Title,
			Date:     e.Meta.Date,
			Checksum: e.Checksum,
			Tags:     e.Meta.Tags,
		}
		body := strings.ReplaceAll(p.Content, "\r\n", "\n")
		if err := db.UpsertPost(row, body); err != nil {
			logger.Warn("sync: index failed", slog.String("path", e.Path), slog.String("error", err.Error()))
			continue
		}
		stats.Indexed++
		logger.Debug("sync: indexed", slog.String("slug", e.Slug))
	}

	for slug := range checksums {
		if _, ok := live[slug]; ok {
			continue
		}
		if err := db.DeletePost(slug); err != nil {
			logger.Warn("sync: delete failed", slog.String("slug", slug), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		logger.Debug("sync: removed stale", slog.String("slug", slug))
	}

	return stats, nil
}
