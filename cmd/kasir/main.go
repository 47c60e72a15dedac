package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"toko_back_end/internal/apiclient"
	"toko_back_end/internal/catalog"
	"toko_back_end/internal/checkout"
	"toko_back_end/internal/config"
	"toko_back_end/internal/kasir"
	"toko_back_end/internal/logger"
	"toko_back_end/internal/orderclient"
	"toko_back_end/internal/qris"
)

func main() {
	boot, _ := zap.NewDevelopment()
	config.Load(boot)
	cfg := config.FromEnv()

	apiURL := flag.String("api", cfg.APIBaseURL, "URL de l'API boutique")
	username := flag.String("user", os.Getenv("KASIR_USERNAME"), "nom d'utilisateur")
	password := flag.String("pass", os.Getenv("KASIR_PASSWORD"), "mot de passe")
	flag.Parse()

	log, err := logger.New(cfg.Env, "warn")
	if err != nil {
		boot.Fatal("❌ Impossible d'initialiser le logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := apiclient.New(*apiURL, apiclient.WithLogger(log))
	session, err := api.Login(ctx, *username, *password)
	if err != nil {
		log.Fatal("❌ Connexion impossible", zap.String("user", *username), zap.Error(err))
	}

	cat := catalog.New(api, log)
	if _, err := cat.Load(ctx); err != nil {
		log.Fatal("❌ Chargement du catalogue impossible", zap.Error(err))
	}

	orders := orderclient.New(api, log)
	wf := checkout.NewWorkflow(
		qris.New(cfg.QRISMerchantName, cfg.QRISMerchantCity, cfg.QRISDelay, log),
		orders,
		checkout.WithNotifier(kasir.Notifier(os.Stdout)),
		checkout.WithLogger(log),
		checkout.WithKasir(session.User.Username),
	)

	term := kasir.NewTerminal(cat, wf, orders, session.User.Customer(), os.Stdout, log)
	if err := term.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Fatal("❌ Erreur terminal", zap.Error(err))
	}
}
