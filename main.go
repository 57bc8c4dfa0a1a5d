package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"lms/config"
	courseControllers "lms/controllers/course"
	"lms/database"
	"lms/logger"
	"lms/models"
	"lms/models/course"
	"lms/renderer"
	courseRoutes "lms/routers/courseRoutes"
	superAdminRoutes "lms/routers/superAdmin"
	"lms/services/certificate"
	"lms/services/progress"
	"lms/storage"
	"lms/utils"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	database.ConnectDb(cfg)

	store, err := storage.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("storage init failed")
	}
	utils.DefaultMailer = utils.NewMailer(cfg)

	certificates := certificate.NewService(database.Database.Db, renderer.New(cfg), store,
		func(user models.User, c course.Course, cert course.Certificate) {
			utils.SendCertificateEmail(user.Email, user.Name, c.Title, cert.CertificateNumber, cert.CertificateURL)
		})
	courseControllers.Setup(progress.NewService(database.Database.Db, certificates), certificates, store)

	scheduler, err := utils.InitializeCertificateScheduler(cfg.CertificateRetryCron, certificates)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.CertificateRetryCron).Msg("certificate scheduler init failed")
	}

	app := fiber.New(fiber.Config{
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
		BodyLimit:   10 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Locally stored certificates and thumbnails
	if cfg.StorageDriver == "" || cfg.StorageDriver == "local" {
		prefix := "/uploads"
		if strings.HasPrefix(cfg.PublicBaseURL, "/") {
			prefix = cfg.PublicBaseURL
		}
		app.Static(prefix, cfg.UploadDir)
	}

	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	superAdminRoutes.SetupSuperAdminRoutes(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Info().Msg("shutting down")
		<-scheduler.Stop().Done()
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("Server is running")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
