package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/vigil-dev/vigil/db"
	"github.com/vigil-dev/vigil/internal/auth"
	"github.com/vigil-dev/vigil/internal/handlers"
	"github.com/vigil-dev/vigil/internal/notifier"
	"github.com/vigil-dev/vigil/internal/repository"
	"github.com/vigil-dev/vigil/internal/router"
	"github.com/vigil-dev/vigil/internal/scheduler"
	"github.com/vigil-dev/vigil/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	alerting := services.NewAlertingService(
		repository.NewMonitorRepository(db.DB),
		repository.NewAlertConfigRepository(db.DB),
		notifier.NewChannelFactory(),
	)
	alerting.OnMonitorSaved(func(workspaceID uint) {
		handlers.BroadcastRefresh(fmt.Sprint(workspaceID))
	})

	sched := scheduler.NewScheduler(alerting, scanInterval())
	sched.Start()
	defer sched.Stop()

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func scanInterval() time.Duration {
	raw := os.Getenv("ALERT_SCAN_INTERVAL")

	if raw == "" {
		return 60 * time.Second
	}

	seconds, err := strconv.Atoi(raw)

	if err != nil || seconds <= 0 {
		log.Printf("Invalid ALERT_SCAN_INTERVAL %q, defaulting to 60s", raw)
		return 60 * time.Second
	}

	return time.Duration(seconds) * time.Second
}
