package main

import (
	"fmt"
	"log"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"ledger-chat-backend/internal/config"
	"ledger-chat-backend/internal/conversation"
	"ledger-chat-backend/internal/db"
	"ledger-chat-backend/internal/ledger"
	"ledger-chat-backend/internal/server"
	"ledger-chat-backend/internal/store"
)

func main() {
	cfg := config.Load()

	var ledgerStore conversation.LedgerStore
	if cfg.DatabaseURL != "" {
		database, err := db.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to initialize database: %v", err)
		}
		if err := database.RunMigrations("./migrations"); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		log.Println("database connection established")
		ledgerStore = store.NewPostgresLedger(database)
	} else {
		sqlite, err := store.NewSQLiteLedger(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open sqlite ledger: %v", err)
		}
		log.Printf("using sqlite ledger at %s", cfg.SQLitePath)
		ledgerStore = sqlite
	}

	var extractor *ledger.Extractor
	if cfg.OpenAIAPIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
		if cfg.OpenAIBaseURL != "" {
			clientCfg.BaseURL = cfg.OpenAIBaseURL
		}
		client := openai.NewClientWithConfig(clientCfg)

		var err error
		extractor, err = ledger.LoadExtractor(cfg.IntentPromptFile, client, cfg.Model)
		if err != nil {
			log.Fatalf("failed to load intent prompt spec: %v", err)
		}
	}

	resolver := ledger.NewResolver(extractor)
	controller := conversation.New(ledgerStore, resolver)
	s := server.NewServer(cfg, ledgerStore, controller)

	addr := ":" + cfg.Port
	fmt.Printf("ledger server listening on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, s.Router()))
}
