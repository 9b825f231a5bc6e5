package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/monarq/account-api/internal/auth"
	"github.com/monarq/account-api/internal/config"
	"github.com/monarq/account-api/internal/database"
	"github.com/monarq/account-api/internal/mailer"
	"github.com/monarq/account-api/internal/posts"
	"github.com/monarq/account-api/internal/recovery"
	"github.com/monarq/account-api/internal/register"
	"github.com/monarq/account-api/internal/server"
	"github.com/monarq/account-api/internal/store"
)

func main() {
	cfg := config.Load()
	log := newLogger("main")

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.CreateSchema(ctx, db); err != nil {
		cancel()
		log.Error("failed to create schema", "error", err)
		os.Exit(1)
	}
	cancel()

	repo := store.NewManager(db)
	repo.MustValidate()

	smtp, err := mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if err != nil {
		log.Error("failed to build mailer", "error", err)
		os.Exit(1)
	}

	codec := auth.NewTokenCodec().WithLogger(log.scoped("codec"))

	authSvc := auth.NewService(repo.Credentials(), codec, cfg.TokenTTL).
		WithLogger(log.scoped("auth"))

	registerSvc := register.NewService(repo).
		WithLogger(log.scoped("register")).
		WithHashCost(cfg.BcryptCost)

	recoverySvc := recovery.NewService(repo.Accounts(), repo.Credentials(), smtp, cfg.FrontendURL).
		WithCodec(codec).
		WithResetTTL(cfg.ResetTTL).
		WithHashCost(cfg.BcryptCost).
		WithLogger(log.scoped("recovery"))

	postsSvc := posts.NewService(repo.Posts()).
		WithLogger(log.scoped("posts"))

	srv := server.New(server.Deps{
		Auth:     authSvc,
		Register: registerSvc,
		Recovery: recoverySvc,
		Posts:    postsSvc,
		Repo:     repo,
		Logger:   log.scoped("server"),
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("listening", "address", cfg.Address)
	if err := srv.Listen(cfg.Address); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
