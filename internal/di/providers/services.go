package providers

import (
	"github.com/samber/do/v2"

	"github.com/quillhq/quill-server/internal/logger"
	"github.com/quillhq/quill-server/internal/service"
)

// ProvidePostService provides the post service.
func ProvidePostService(i do.Injector) (*service.PostService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPostService(storeHandle.Store, log.WithComponent("posts").Logger), nil
}
