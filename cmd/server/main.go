package main

import (
	log "github.com/sirupsen/logrus"

	_ "taskboard/docs"
	"taskboard/internal/config"
	"taskboard/internal/server"
)

// @title           Kanban API
// @version         1.0
// @description     API for Kanban boards, their columns, tasks and subtasks.

// @host      localhost:8080
// @BasePath  /

// @schemes http
func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
