package dispatch

import (
	"wallgrab/pkg/config"
	"wallgrab/pkg/fetch"
	"wallgrab/pkg/logger"
	"wallgrab/pkg/storage"
)

// NewDefault builds the dispatcher used by the download command: origin-site
// media first, then the gallery host, then a direct fetch for everything else.
func NewDefault(cfg *config.DownloadConfig, client *fetch.Client, store *storage.Manager, log logger.Logger) *Dispatcher {
	d := NewDispatcher(log)
	extractor := NewCommandExtractor(cfg.ExtractorCmd, cfg.ExtractorArgs, cfg.OutputTemplate)

	d.Register(NewMediaStrategy(cfg.OriginToken, extractor, store, log))
	d.Register(NewGalleryStrategy(cfg.GalleryToken, client, store, log))
	d.Register(NewDirectStrategy(client, store))
	return d
}
