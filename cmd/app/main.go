package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jdrojasm/citas-scheduler-bot/internal/adapters/in/http"
	"github.com/jdrojasm/citas-scheduler-bot/internal/adapters/in/rabbitmq"
	"github.com/jdrojasm/citas-scheduler-bot/internal/adapters/out/cache"
	"github.com/jdrojasm/citas-scheduler-bot/internal/adapters/out/logger"
	"github.com/jdrojasm/citas-scheduler-bot/internal/adapters/out/session"
	"github.com/jdrojasm/citas-scheduler-bot/internal/config"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/out"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/services"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с таймзоной
	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone, out.LogLevel(strings.ToUpper(cfg.App.LogLevel)))
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := mainLogger.WithModule("Main")

	logger.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Датасет занятых слотов
	scheduleBook, err := cfg.LoadScheduleBook()
	if err != nil {
		logger.Error("app.schedule_book.load_failed", out.LogFields{
			"error": err.Error(),
			"file":  cfg.Schedule.OccupiedSlotsFile,
		})
		os.Exit(1)
	}

	var cacheAdapter out.SlotCachePort
	if cfg.Cache.Enabled {
		adapter, err := cache.NewCacheAdapter(cfg, mainLogger)
		if err != nil {
			logger.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		cacheAdapter = adapter
	}

	sessionAdapter := session.NewMemoryAdapter(mainLogger)

	// Инициализация сервисов
	availabilityService := services.NewAvailabilityService(
		cfg.Schedule.Business,
		scheduleBook,
		cacheAdapter,
		mainLogger,
	)
	registryService := services.NewRegistryService(cfg.Confirmation.Timeout, mainLogger)
	responderService := services.NewResponderService(mainLogger)
	conversationService := services.NewConversationService(
		cfg,
		availabilityService,
		registryService,
		sessionAdapter,
		responderService,
		mainLogger,
	)

	// Настройка HTTP сервера
	router := gin.Default()
	controller := http.NewConversationController(conversationService, availabilityService, cfg)
	controller.RegisterRoutes(router)

	// Настройка RabbitMQ слушателя только если он включен
	if cfg.RabbitMQ.Enabled {
		listener, err := rabbitmq.NewMessageListener(conversationService, cfg, mainLogger)
		if err != nil {
			logger.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := listener.Start(ctx); err != nil {
			logger.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		defer func() {
			if err := listener.Stop(); err != nil {
				logger.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			logger.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	logger.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})

	// Дополнительное логирование для разработки
	if cfg.IsLocal() {
		logger.Debug("app.config.debug", out.LogFields{
			"config": map[string]interface{}{
				"http": map[string]string{
					"host": cfg.HTTP.Host,
					"port": cfg.HTTP.Port,
				},
				"schedule": map[string]interface{}{
					"opening":  cfg.Schedule.OpeningTimeString,
					"closing":  cfg.Schedule.ClosingTimeString,
					"slot":     cfg.Schedule.SlotMinutes,
					"occupied": scheduleBook.TotalOccupied(),
				},
				"rabbitmq": map[string]interface{}{
					"enabled": cfg.RabbitMQ.Enabled,
					"url":     cfg.RabbitMQ.URL,
					"queue":   cfg.RabbitMQ.Queue,
				},
				"cache": map[string]interface{}{
					"enabled":   cfg.Cache.Enabled,
					"days_size": cfg.Cache.DaysSize,
				},
			},
		})
	}
}
