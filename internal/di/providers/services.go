package providers

import (
	"github.com/samber/do/v2"

	"github.com/journalapp/journal-server/internal/auth"
	"github.com/journalapp/journal-server/internal/config"
	"github.com/journalapp/journal-server/internal/logger"
	"github.com/journalapp/journal-server/internal/media/images"
	"github.com/journalapp/journal-server/internal/service"
	"github.com/journalapp/journal-server/pkg/retry"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvideSettingsService provides the editor defaults.
func ProvideSettingsService(i do.Injector) (*service.SettingsService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return service.NewSettingsService(cfg), nil
}

// ProvideNotebookService provides the notebook service.
func ProvideNotebookService(i do.Injector) (*service.NotebookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNotebookService(storeHandle.Store, sseHandle.Manager, log.Logger), nil
}

// ProvidePageService provides the page service.
func ProvidePageService(i do.Injector) (*service.PageService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPageService(storeHandle.Store, sseHandle.Manager, log.Logger), nil
}

// ProvideStickerService provides the sticker catalog service.
func ProvideStickerService(i do.Injector) (*service.StickerService, error) {
	library := do.MustInvoke[*StickerLibraryHandle](i)
	return service.NewStickerService(library.Library), nil
}

// ProvideElementService provides the page element service.
func ProvideElementService(i do.Injector) (*service.ElementService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	stickerService := do.MustInvoke[*service.StickerService](i)
	settingsService := do.MustInvoke[*service.SettingsService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewElementService(
		storeHandle.Store,
		stickerService,
		sseHandle.Manager,
		settingsService.ElementRules(),
		log.Logger,
	), nil
}

// ProvideMediaService provides the upload service.
func ProvideMediaService(i do.Injector) (*service.MediaService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	storage := do.MustInvoke[*images.Storage](i)
	processor := do.MustInvoke[*images.Processor](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMediaService(
		storeHandle.Store,
		storage,
		processor,
		retry.New(retry.DefaultPolicy(), log.Component("retry")),
		service.MediaOptions{MaxUploadBytes: cfg.Media.MaxUploadBytes},
		log.Logger,
	), nil
}
