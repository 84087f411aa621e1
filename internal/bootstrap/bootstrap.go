package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	tea "github.com/charmbracelet/bubbletea"

	authinadapter "lectern/internal/modules/auth/adapter/in"
	authoutadapter "lectern/internal/modules/auth/adapter/out"
	authservice "lectern/internal/modules/auth/service"
	authusecase "lectern/internal/modules/auth/usecase"
	cataloginadapter "lectern/internal/modules/catalog/adapter/in"
	catalogoutadapter "lectern/internal/modules/catalog/adapter/out"
	catalogout "lectern/internal/modules/catalog/port/out"
	catalogservice "lectern/internal/modules/catalog/service"
	catalogusecase "lectern/internal/modules/catalog/usecase"
	progressinadapter "lectern/internal/modules/progress/adapter/in"
	progressoutadapter "lectern/internal/modules/progress/adapter/out"
	progressservice "lectern/internal/modules/progress/service"
	progressusecase "lectern/internal/modules/progress/usecase"
	readerinadapter "lectern/internal/modules/reader/adapter/in"
	readeroutadapter "lectern/internal/modules/reader/adapter/out"
	readerdomain "lectern/internal/modules/reader/domain"
	readerservice "lectern/internal/modules/reader/service"
	readerusecase "lectern/internal/modules/reader/usecase"
	sessioninadapter "lectern/internal/modules/session/adapter/in"
	sessionoutadapter "lectern/internal/modules/session/adapter/out"
	sessionout "lectern/internal/modules/session/port/out"
	sessionservice "lectern/internal/modules/session/service"
	sessionusecase "lectern/internal/modules/session/usecase"
	"lectern/internal/platform/clock"
	"lectern/internal/platform/config"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/httpapi"
	"lectern/internal/platform/id"
	"lectern/internal/platform/logging"
	uiapp "lectern/internal/ui/app"
)

type App struct {
	AuthCLI     authinadapter.CLIHandler
	CatalogCLI  cataloginadapter.CLIHandler
	ProgressCLI progressinadapter.CLIHandler
	ReaderCLI   readerinadapter.CLIHandler
	ReaderTUI   readerinadapter.TUIHandler
	SessionCLI  sessioninadapter.CLIHandler
	SessionTUI  sessioninadapter.TUIHandler

	Logger *log.Logger

	bookCache catalogout.BookCache
}

// New wires every module against the backend at cfg.API.BaseURL. The caller
// must Close the returned App.
func New(cfg config.Config, logger *log.Logger) (*App, error) {
	logger = logging.OrDiscard(logger)
	clk := clock.SystemClock{}
	ids := id.UUID{}

	client := httpapi.New(cfg.API.BaseURL, cfg.API.Timeout,
		httpapi.WithLogger(logger.WithPrefix("http")),
		httpapi.WithIDs(ids),
	)

	authUC := authusecase.NewInteractor(authservice.NewAuthService(
		clk,
		authoutadapter.NewHTTPGateway(client),
		authoutadapter.NewFileTokenStore(cfg.AuthPath()),
		authoutadapter.NewJWTExpiryReader(),
		logger.WithPrefix("auth"),
	))
	client.SetTokenSource(authUC)
	client.OnUnauthorized(authUC.Invalidate)

	bookCache, err := catalogoutadapter.NewSQLiteBookCache(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open book cache: %w", err)
	}
	catalogUC := catalogusecase.NewInteractor(catalogservice.NewCatalogService(
		clk,
		catalogoutadapter.NewHTTPGateway(client),
		bookCache,
		logger.WithPrefix("catalog"),
	))

	progressUC := progressusecase.NewInteractor(progressservice.NewProgressService(
		progressoutadapter.NewHTTPGateway(client),
		logger.WithPrefix("progress"),
	))

	mode, err := readerdomain.ParseMode(cfg.Reader.DocumentMode)
	if err != nil {
		_ = bookCache.Close()
		return nil, err
	}
	readerUC := readerusecase.NewInteractor(readerservice.NewReaderService(
		mode,
		readeroutadapter.NewCatalogBookAdapter(catalogUC),
		readeroutadapter.NewHTTPDocumentFetcher(client),
		readeroutadapter.NewFileDocumentCache(cfg.Reader.CacheDir),
		readeroutadapter.NewPDFParser(),
		readeroutadapter.NewOSExternalLauncher(cfg.Reader.Opener),
		logger.WithPrefix("reader"),
	))

	var journal sessionout.JournalStore
	if cfg.Session.Journal {
		journal = sessionoutadapter.NewMarkdownJournalStore(cfg.JournalDir())
	}
	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewController(clk, ids, sessionoutadapter.NewProgressStoreAdapter(progressUC), logger.WithPrefix("session")),
		sessionusecase.Options{
			Identity:     sessionoutadapter.NewIdentityAdapter(authUC),
			Catalog:      sessionoutadapter.NewCatalogAdapter(catalogUC),
			ActiveStore:  sessionoutadapter.NewFileActiveSessionStore(cfg.ActiveSessionPath()),
			Journal:      journal,
			CloseTimeout: cfg.Session.CloseTimeout,
			Logger:       logger.WithPrefix("session"),
		},
	)

	return &App{
		AuthCLI:     authinadapter.NewCLIHandler(authUC),
		CatalogCLI:  cataloginadapter.NewCLIHandler(catalogUC),
		ProgressCLI: progressinadapter.NewCLIHandler(progressUC),
		ReaderCLI:   readerinadapter.NewCLIHandler(readerUC),
		ReaderTUI:   readerinadapter.NewTUIHandler(readerUC),
		SessionCLI:  sessioninadapter.NewCLIHandler(sessionUC),
		SessionTUI:  sessioninadapter.NewTUIHandler(sessionUC),
		Logger:      logger,
		bookCache:   bookCache,
	}, nil
}

func (a *App) Close() error {
	return a.bookCache.Close()
}

// RunTUI runs the terminal UI until the user quits or ctx is cancelled. A
// session left open by an interrupt is closed with the signal trigger.
func RunTUI(ctx context.Context, app *App) error {
	model := uiapp.NewModel(app.CatalogCLI, app.SessionTUI, app.ReaderTUI, app.ProgressCLI)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()

	if ctx.Err() != nil {
		out, err := app.SessionTUI.Signal(context.WithoutCancel(ctx))
		switch {
		case err == nil:
			app.Logger.Info("closed reading session on interrupt", "book", out.BookID, "page", out.EndPage, "persisted", out.Persisted)
		case !errors.Is(err, apperrors.ErrNoActiveSession):
			app.Logger.Warn("close reading session on interrupt", "err", err)
		}
		return nil
	}
	return runErr
}
