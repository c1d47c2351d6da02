package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/MrJamesThe3rd/compta/internal/account"
	accountStore "github.com/MrJamesThe3rd/compta/internal/account/store"
	"github.com/MrJamesThe3rd/compta/internal/config"
	"github.com/MrJamesThe3rd/compta/internal/database"
	"github.com/MrJamesThe3rd/compta/internal/export"
	comptaHttp "github.com/MrJamesThe3rd/compta/internal/http"
	accountHandler "github.com/MrJamesThe3rd/compta/internal/http/account"
	importHandler "github.com/MrJamesThe3rd/compta/internal/http/importcsv"
	pieceHandler "github.com/MrJamesThe3rd/compta/internal/http/piece"
	"github.com/MrJamesThe3rd/compta/internal/importer"
	"github.com/MrJamesThe3rd/compta/internal/piece"
	pieceStore "github.com/MrJamesThe3rd/compta/internal/piece/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var (
		pieceService   = piece.NewService(pieceStore.New(db))
		accountService = account.NewService(accountStore.New(db))
		exportService  = export.NewService(pieceService)
	)

	var (
		pieceH   = pieceHandler.NewHandler(pieceService, exportService)
		accountH = accountHandler.NewHandler(accountService)
		importH  = importHandler.NewHandler(importer.NewParser())
	)

	router := comptaHttp.New(cfg.Server.CORSOrigins, pieceH, accountH, importH)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
