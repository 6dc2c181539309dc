package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/journalapp/journal-server/internal/config"
	"github.com/journalapp/journal-server/internal/logger"
	"github.com/journalapp/journal-server/internal/media/images"
	"github.com/journalapp/journal-server/internal/stickers"
)

// ProvideImageStorage provides the on-disk store for uploaded media.
func ProvideImageStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Media.Path)
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}

	log.Info("Media storage initialized", "path", cfg.Media.Path)

	return storage, nil
}

// ProvideImageProcessor provides the upload inspector.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewProcessor(cfg.Media.MaxDimension, log.Component("images")), nil
}

// StickerLibraryHandle wraps the sticker library with shutdown capability.
type StickerLibraryHandle struct {
	*stickers.Library
}

// Shutdown implements do.Shutdownable.
func (h *StickerLibraryHandle) Shutdown() error {
	return h.Close()
}

// ProvideStickerLibrary loads the sticker catalog and starts watching it for changes.
func ProvideStickerLibrary(i do.Injector) (*StickerLibraryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	library, err := stickers.New(stickers.Options{
		Dir:    cfg.Stickers.Dir,
		Watch:  cfg.Stickers.Watch,
		Logger: log.Component("stickers"),
	})
	if err != nil {
		return nil, fmt.Errorf("sticker library: %w", err)
	}

	log.Info("Sticker library loaded",
		"dir", cfg.Stickers.Dir,
		"builtin", library.Builtin(),
		"categories", len(library.Categories()),
		"watch", cfg.Stickers.Watch,
	)

	return &StickerLibraryHandle{Library: library}, nil
}
