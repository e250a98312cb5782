package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	cataloginadapter "tally/internal/modules/catalog/adapter/in"
	catalogoutadapter "tally/internal/modules/catalog/adapter/out"
	catalogservice "tally/internal/modules/catalog/service"
	catalogusecase "tally/internal/modules/catalog/usecase"
	draftoutadapter "tally/internal/modules/draft/adapter/out"
	draftservice "tally/internal/modules/draft/service"
	draftusecase "tally/internal/modules/draft/usecase"
	sessioninadapter "tally/internal/modules/session/adapter/in"
	sessionoutadapter "tally/internal/modules/session/adapter/out"
	sessionout "tally/internal/modules/session/port/out"
	sessionservice "tally/internal/modules/session/service"
	sessionusecase "tally/internal/modules/session/usecase"
	statsinadapter "tally/internal/modules/stats/adapter/in"
	statsoutadapter "tally/internal/modules/stats/adapter/out"
	statsservice "tally/internal/modules/stats/service"
	statsusecase "tally/internal/modules/stats/usecase"
	"tally/internal/platform/clock"
	"tally/internal/platform/config"
	"tally/internal/platform/id"
	"tally/internal/platform/logging"
	"tally/internal/platform/notify"
	"tally/internal/platform/sqlitedb"
	uiapp "tally/internal/ui/app"
)

type App struct {
	Config     config.Config
	CatalogCLI cataloginadapter.CLIHandler
	SessionCLI sessioninadapter.CLIHandler
	StatsCLI   statsinadapter.CLIHandler
	Notifier   notify.Notifier
	db         *sql.DB
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := logging.Initialize(cfg.Debug, cfg.LogFile, cfg.LogDir); err != nil {
		return nil, err
	}
	clk := clock.SystemClock{}
	ids := id.UUID{}

	db, err := sqlitedb.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	catalogStore, err := catalogoutadapter.NewSQLiteCatalogStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new catalog store: %w", err)
	}
	catalogUC := catalogusecase.NewInteractor(catalogservice.NewCatalogService(clk, ids, catalogStore, catalogStore))

	draftUC := draftusecase.NewInteractor(draftservice.NewDraftStore(draftoutadapter.NewFileMedium(cfg.DraftDir)))
	drafts := sessionoutadapter.NewDraftCacheAdapter(draftUC)

	repo, err := newSessionRepository(ctx, cfg, db, ids)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	lookup := sessionoutadapter.NewCatalogAdapter(catalogUC)
	sessionSvc := sessionservice.NewSessionService(clk, ids, cfg.Timezone, sessionoutadapter.NewFileActiveSessionStore(cfg.ActivePath), lookup, lookup)
	pipeline := sessionservice.NewSavePipeline(ids, repo, sessionoutadapter.NewFilePhotoStore(cfg.PhotoDir), drafts)
	sessionUC := sessionusecase.NewInteractor(sessionSvc, pipeline, repo, drafts)

	statsUC := statsusecase.NewInteractor(statsservice.NewStatsService(clk, cfg.Timezone, statsoutadapter.NewSessionSource(sessionUC)))

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Notify {
		notifier = notify.Desktop{AppName: "tally"}
	}
	logging.Logger.Debug("app wired", "home", cfg.Home, "backend", cfg.SessionBackend, "timezone", cfg.Timezone.String())

	return &App{
		Config:     cfg,
		CatalogCLI: cataloginadapter.NewCLIHandler(catalogUC),
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		StatsCLI:   statsinadapter.NewCLIHandler(statsUC),
		Notifier:   notifier,
		db:         db,
	}, nil
}

func newSessionRepository(ctx context.Context, cfg config.Config, db *sql.DB, ids id.Generator) (sessionout.SessionRepository, error) {
	switch cfg.SessionBackend {
	case config.BackendVault:
		return sessionoutadapter.NewVaultSessionRepository(cfg.VaultDir, cfg.Timezone, ids), nil
	case config.BackendSQLite:
		repo, err := sessionoutadapter.NewSQLiteSessionRepository(ctx, db, ids)
		if err != nil {
			return nil, fmt.Errorf("new session repository: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported session backend %q", cfg.SessionBackend)
	}
}

func (a *App) Close() error {
	defer logging.Close()
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.CatalogCLI, app.SessionCLI, app.StatsCLI, app.Notifier)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
