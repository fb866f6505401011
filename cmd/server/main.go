package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"frontier-server/internal/config"
	"frontier-server/internal/engine"
	"frontier-server/internal/infrastructure/storage"
	"frontier-server/internal/server"
	"frontier-server/internal/version"
	"frontier-server/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to YAML config")
	flag.Parse()

	logger.Log.Info("Starting Frontier Server...")
	logger.Log.Info(version.String())

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Log.Fatal("Config error: ", err)
	}
	logger.Log.Infof("⚙️  World %.0fx%.0f, tick rate %d/s", cfg.WorldWidth, cfg.WorldHeight, cfg.TickRate)

	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		logger.Log.Fatal("Storage error: ", err)
	}

	// 2. Инициализация ядра
	gameService := engine.NewGameService(cfg, store)
	if err := gameService.Loop.Start(); err != nil {
		logger.Log.Fatal("Loop start error: ", err)
	}

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 3. Запуск сервера
	srv := server.New(gameService, fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))

	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("Server start error: ", err)
		}
	}()

	<-stop
	logger.Log.Info("Shutting down...")

	// Сначала останавливаем цикл, потом сохраняем: после Stop мир
	// гарантированно никто не мутирует.
	if err := gameService.Loop.Stop(); err != nil {
		logger.Log.WithError(err).Warn("Loop was not running")
	}
	gameService.SaveAll()

	logger.Log.Info("Done.")
}
