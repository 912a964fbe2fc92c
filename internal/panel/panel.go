// Package panel assembles the admin panel client: storage, token store,
// transport, session controller, resource services and list screens.
package panel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"catalogadmin/catalog-panel/internal/apiclient"
	"catalogadmin/catalog-panel/internal/authclient"
	"catalogadmin/catalog-panel/internal/config"
	"catalogadmin/catalog-panel/internal/observability"
	"catalogadmin/catalog-panel/internal/resource"
	"catalogadmin/catalog-panel/internal/screen"
	"catalogadmin/catalog-panel/internal/session"
	"catalogadmin/catalog-panel/internal/storage"
	"catalogadmin/catalog-panel/internal/tokenstore"
)

type Options struct {
	// Storage defaults to a JSON file at cfg.StateFile.
	Storage storage.Storage
	// Navigator defaults to a HistoryNavigator starting at cfg.HomePath.
	Navigator  session.Navigator
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Panel struct {
	Tokens     *tokenstore.Store
	Session    *session.Controller
	Nav        session.Navigator
	Categories *screen.CategoryScreen
	Products   *screen.ProductScreen

	CategoryAPI *resource.CategoryService
	ProductAPI  *resource.ProductService
}

func New(cfg config.PanelConfig, opts Options) (*Panel, error) {
	log := observability.OrDefault(opts.Logger)

	store := opts.Storage
	if store == nil {
		fileStore, err := storage.NewFile(cfg.StateFile)
		if err != nil {
			return nil, fmt.Errorf("open panel state: %w", err)
		}
		store = fileStore
	}
	nav := opts.Navigator
	if nav == nil {
		nav = NewHistoryNavigator(cfg.HomePath)
	}

	api, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.APIURL,
		Timeout:    cfg.HTTPTimeout,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	tokens := tokenstore.New(store, cfg.TokenKey)
	ctrl := session.NewController(tokens, authclient.New(api), nav, log, session.Config{
		OnTokenExpiration: cfg.OnTokenExpiration,
		LoginPath:         cfg.LoginPath,
		HomePath:          cfg.HomePath,
	})

	categoryAPI := resource.NewCategoryService(api, tokens)
	productAPI := resource.NewProductService(api, tokens)

	return &Panel{
		Tokens:      tokens,
		Session:     ctrl,
		Nav:         nav,
		Categories:  screen.NewCategoryScreen(categoryAPI, log),
		Products:    screen.NewProductScreen(productAPI, categoryAPI, ctrl, log),
		CategoryAPI: categoryAPI,
		ProductAPI:  productAPI,
	}, nil
}

// Start restores the session from storage.
func (p *Panel) Start(ctx context.Context) {
	p.Session.Init(ctx)
}
