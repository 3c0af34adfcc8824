package main

import (
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benbeisheim/chessrules-backend/internal/config"
	"github.com/benbeisheim/chessrules-backend/internal/controller"
	"github.com/benbeisheim/chessrules-backend/internal/service"
	"github.com/benbeisheim/chessrules-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

var (
	flagConfig = flag.String("config", "", "Path to a config file (default: search XDG config dirs)")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagWrite  = flag.Bool("write-config", false, "Write the effective config to the XDG config dir and exit")
)

func main() {
	flag.Parse()

	if *flagDebug {
		log.SetLevel(log.LevelDebug)
	}

	var (
		cfg *config.Config
		err error
	)
	if *flagConfig != "" {
		cfg, err = config.Load(*flagConfig)
	} else {
		cfg, err = config.InitConfig()
	}
	if err != nil {
		log.Fatal(err)
	}

	if *flagWrite {
		path, err := cfg.Save()
		if err != nil {
			log.Fatal(err)
		}
		log.Infof("config written to %s", path)
		return
	}

	store, err := storage.Open(cfg.DatabaseDir())
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	// Initialize services
	gameManager, err := service.NewGameManager(store, cfg.Matchmaking.Interval.Duration)
	if err != nil {
		log.Fatal(err)
	}
	defer gameManager.Close()
	gameManager.StartEviction(cfg.Games.SweepInterval.Duration, service.Retention{
		Finished: cfg.Games.FinishedTTL.Duration,
		Idle:     cfg.Games.IdleTTL.Duration,
	})
	gameService := service.NewGameService(gameManager)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.AllowedOrigins, ", "),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	controller.SetupRoutes(app, gameService, websocket.Config{
		ReadBufferSize:  cfg.Server.ReadBufferSize,
		WriteBufferSize: cfg.Server.WriteBufferSize,
		Origins:         cfg.Server.AllowedOrigins,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("listening on %s", cfg.Server.ListenAddr)
	if err := app.Listen(cfg.Server.ListenAddr); err != nil {
		log.Errorf("listen: %v", err)
	}
}
