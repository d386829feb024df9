package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/database"
	"github.com/iliyamo/user-account-service/internal/handler"
	"github.com/iliyamo/user-account-service/internal/notifier"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/router"
	"github.com/iliyamo/user-account-service/internal/service"
)

func main() {
	_ = godotenv.Load() // read .env when present; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// The revocation set prefers Redis so logouts are shared across
	// instances; with no reachable Redis it degrades to the in-process
	// store, which forgets revocations on restart.
	var revoked repository.RevocationStore
	if rdb := config.NewRedisClient(); rdb != nil {
		ttl := time.Duration(cfg.AccessTTLMin) * time.Minute
		revoked = repository.NewRedisRevocationStore(rdb, ttl)
		log.Printf("revocation store: redis")
	} else {
		revoked = repository.NewMemoryRevocationStore()
		log.Printf("revocation store: in-memory (single instance only)")
	}

	users := repository.NewUserRepo(db)
	addresses := repository.NewAddressRepo(db)
	devices := repository.NewDeviceRepo(db)
	changes := repository.NewPasswordChangeRepo(db)

	notify := notifier.NewAMQPNotifier(cfg.AMQPURL)
	go notifier.StartConsumer(cfg.AMQPURL)

	authSvc := service.NewAuthService(users, revoked, cfg.JWTSecret, cfg.AccessTTLMin)
	userSvc := service.NewUserService(users, addresses, devices, notify, cfg.BcryptCost)
	changeSvc := service.NewPasswordChangeService(users, changes, notify, cfg.BcryptCost)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Users:     handler.NewUserHandler(userSvc),
		Addresses: handler.NewAddressHandler(userSvc),
		Devices:   handler.NewDeviceHandler(userSvc),
		Changes:   handler.NewPasswordChangeHandler(changeSvc),
	}, cfg.JWTSecret, revoked)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
