package main

import (
	"context"
	"log"
	"time"

	"reqpanel/internal/broadcast"
	"reqpanel/internal/config"
	"reqpanel/internal/database"
	"reqpanel/internal/gd"
	"reqpanel/internal/googleauth"
	"reqpanel/internal/locales"
	"reqpanel/internal/requestbot"
	"reqpanel/internal/requests"
	"reqpanel/internal/session"
	"reqpanel/internal/sheetqueue"
	"reqpanel/internal/tui"
	"reqpanel/internal/twitch"
	"reqpanel/internal/youtube"

	tea "github.com/charmbracelet/bubbletea"
	sentry "github.com/getsentry/sentry-go"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize localization bundle
	locales.Init(cfg.DefaultLanguage)

	// Initialize Sentry (if DSN is provided)
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	ctx := context.Background()

	// Decision audit log: Mongo when configured, otherwise a nop.
	var decisions database.DecisionLogger = database.NopDecisionLog{}
	if cfg.MongoDBURI != "" {
		mongoLog, err := database.Connect(ctx, cfg.MongoDBURI, cfg.MongoDBDatabase)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal(err)
		}
		defer func() {
			if err := mongoLog.Close(context.Background()); err != nil {
				log.Printf("Error disconnecting from MongoDB: %v", err)
				sentry.CaptureException(err)
			}
		}()
		decisions = mongoLog
	}

	// Durable session state: operator settings + last broadcast + processed set.
	store, err := session.Load(cfg.SettingsFile)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to load the settings file: %v", err)
	}
	settings := store.Settings()

	// Google credential flow covers both the Apps Script and YouTube clients.
	httpClient, err := googleauth.NewHTTPClient(ctx, cfg.ClientSecretFile, cfg.TokenFile)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to authorize with Google: %v", err)
	}

	sheetClient, err := sheetqueue.NewClient(ctx, httpClient, cfg.ScriptID)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create the Apps Script client: %v", err)
	}

	youtubeClient, err := youtube.NewClient(ctx, httpClient)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create the YouTube client: %v", err)
	}

	twitchClient := twitch.NewClient()
	levelClient := gd.NewClient()
	botClient := requestbot.NewClient(settings.APIRootURL, settings.APIToken)

	manager, err := requests.NewManager(requests.ManagerDeps{
		Sheet:     sheetClient,
		Bot:       botClient,
		Levels:    levelClient,
		Session:   store,
		Decisions: decisions,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}

	controller, err := broadcast.NewController(broadcast.ControllerDeps{
		YouTube:  youtubeClient,
		Twitch:   twitchClient,
		Form:     sheetClient,
		Bot:      botClient,
		Requests: manager,
		Session:  store,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}

	localizer := locales.NewLocalizer(cfg.DefaultLanguage)
	model := tui.NewModel(manager, controller, store, botClient, localizer)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Panel error: %v", err)
	}
}
