package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"techgear/internal/config"
	"techgear/internal/handler"
	"techgear/internal/infra/db"
	infraRepo "techgear/internal/infra/repository"
	"techgear/internal/logger"
	"techgear/internal/middleware"
	"techgear/internal/server"
	"techgear/internal/usecase"
	auth "techgear/internal/usecase/auth_usecase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Service: cfg.AppName,
		Env:     cfg.GoEnv,
		Level:   cfg.LogLevel,
	})

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	catalogRepo := infraRepo.NewCatalogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB, cfg.TxTimeout, cfg.LockTimeout)

	//usecaseに渡す部品
	clock := auth.SystemClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, auth.UUIDGenerator{})

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	profileUC := auth.NewProfileUsecase(userRepo)
	productUC := usecase.NewProductUsecase(productRepo, txm)
	catalogUC := usecase.NewCatalogUsecase(catalogRepo)
	cartUC := usecase.NewCartUsecase(txm)
	checkoutUC := usecase.NewCheckoutUsecase(txm, log)
	orderUC := usecase.NewOrderUsecase(txm)

	//Handler生成
	e := server.New(cfg, log, server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC, profileUC),
		Product:      handler.NewProductHandler(productUC, catalogUC),
		AdminProduct: handler.NewAdminProductHandler(productUC, catalogUC),
		Cart:         handler.NewCartHandler(cartUC, checkoutUC),
		Order:        handler.NewOrderHandler(orderUC),
		AuthMW:       middleware.AuthJWT(issuer, userRepo),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//Server起動
	return server.Run(ctx, e, cfg.Addr(), cfg.ShutdownTimeout, log)
}
