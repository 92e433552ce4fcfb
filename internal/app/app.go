package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/common"
	"github.com/ternarybob/legalaid/internal/handlers"
	"github.com/ternarybob/legalaid/internal/services/analysis"
	"github.com/ternarybob/legalaid/internal/services/chat"
	"github.com/ternarybob/legalaid/internal/services/credentials"
	"github.com/ternarybob/legalaid/internal/services/documents"
	"github.com/ternarybob/legalaid/internal/services/i18n"
	"github.com/ternarybob/legalaid/internal/services/llm"
	"github.com/ternarybob/legalaid/internal/services/patterns"
	"github.com/ternarybob/legalaid/internal/services/pdf"
	"github.com/ternarybob/legalaid/internal/services/session"
	"github.com/ternarybob/legalaid/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config    *common.Config
	Logger    arbor.ILogger
	ctx       context.Context
	cancelCtx context.CancelFunc

	// Secret store (nil when storage.badger.path is empty)
	SecretStore *badger.Manager

	// Credential chain: secret store -> environment -> secrets file
	Credentials *credentials.Chain

	// Hosted model access
	Provider *llm.ProviderFactory
	Answers  *llm.AnswerService

	// Chat fallback chain
	Patterns *patterns.Store
	Keywords *chat.KeywordClassifier
	Catalog  *i18n.Catalog
	Resolver *chat.Resolver

	// Document pipeline
	Extractor  *documents.Extractor
	Analyzer   *analysis.Analyzer
	PDFService *pdf.Service

	Sessions *session.Registry

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	SessionHandler  *handlers.SessionHandler
	ChatHandler     *handlers.ChatHandler
	DocumentHandler *handlers.DocumentHandler
	SecretsHandler  *handlers.SecretsHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       ctx,
		cancelCtx: cancel,
	}

	if err := app.initStorage(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Int("patterns", app.Patterns.Len()).
		Strs("credential_sources", app.Credentials.SourceNames()).
		Str("default_language", app.Config.Localization.DefaultLanguage).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage opens the secret store and seeds it from the keys directory
func (a *App) initStorage() error {
	if a.Config.Storage.Badger.Path == "" {
		a.Logger.Info().Msg("Secret store disabled (storage.badger.path is empty)")
		return nil
	}

	manager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to open secret store: %w", err)
	}
	a.SecretStore = manager

	if err := manager.LoadSecretsFromDir(a.ctx, a.Config.Credentials.KeysDir); err != nil {
		// Non-fatal: keys can still come from the environment or the secrets file
		a.Logger.Warn().Err(err).Msg("Failed to load secrets from keys directory")
	}
	return nil
}

// initServices builds the services in dependency order
func (a *App) initServices() error {
	sources := make([]credentials.Source, 0, 3)
	if a.SecretStore != nil {
		sources = append(sources, credentials.SecretStoreSource{Store: a.SecretStore.KeyValueStorage()})
	}
	sources = append(sources,
		credentials.EnvSource{},
		credentials.FileSource{Path: a.Config.Credentials.SecretsFile},
	)
	a.Credentials = credentials.NewChain(a.Logger, sources...)

	a.Provider = llm.NewProviderFactory(a.Config, a.Credentials, a.Logger)
	a.Answers = llm.NewAnswerService(a.Provider, a.Logger)

	a.Patterns = patterns.NewStore(a.Config.Patterns.Path, a.Logger)
	if a.Config.Patterns.Watch {
		if err := a.Patterns.Watch(a.ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Pattern file watching disabled")
		}
	}

	catalog, err := i18n.NewCatalog()
	if err != nil {
		return err
	}
	a.Catalog = catalog
	if !catalog.Has(a.Config.Localization.DefaultLanguage) {
		a.Logger.Warn().
			Str("language", a.Config.Localization.DefaultLanguage).
			Msg("Unknown default language, using English")
		a.Config.Localization.DefaultLanguage = i18n.DefaultLanguage
	}

	a.Keywords = chat.NewKeywordClassifier()
	a.Resolver = chat.NewResolver(a.Answers, a.Patterns, a.Keywords, a.Catalog, a.Logger)

	a.Extractor = documents.NewExtractor(a.Logger)
	a.Analyzer = analysis.NewAnalyzer(a.Provider, a.Config.Documents.AnalysisCharLimit, a.Logger)
	a.PDFService = pdf.NewService(a.Logger)

	a.Sessions = session.NewRegistry(a.Config.Localization.DefaultLanguage, a.Logger)
	return nil
}

// initHandlers creates the HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.SessionHandler = handlers.NewSessionHandler(a.Sessions, a.Catalog, a.Config.Localization.AutoDetect, a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.Sessions, a.Resolver, a.Catalog, a.Logger)
	a.DocumentHandler = handlers.NewDocumentHandler(
		a.Sessions,
		a.Extractor,
		a.Analyzer,
		a.PDFService,
		a.Config.Documents.MaxUploadMB,
		a.Logger,
	)

	if a.SecretStore != nil {
		a.SecretsHandler = handlers.NewSecretsHandler(
			a.SecretStore.KeyValueStorage(),
			a.Credentials,
			[]string{
				a.Provider.CredentialName(llm.ProviderGemini),
				a.Provider.CredentialName(llm.ProviderClaude),
			},
			a.Logger,
		)
	}
}

// Context is cancelled by Close
func (a *App) Context() context.Context {
	return a.ctx
}

// Close closes all application resources
func (a *App) Close() error {
	if a.cancelCtx != nil {
		a.cancelCtx()
	}

	if a.SecretStore != nil {
		if err := a.SecretStore.Close(); err != nil {
			return fmt.Errorf("failed to close secret store: %w", err)
		}
		a.Logger.Info().Msg("Secret store closed")
	}

	return nil
}
