package main

import (
	_ "todolist/docs"
	"todolist/internal/config"
	"todolist/internal/server"

	log "github.com/sirupsen/logrus"
)

// @title           Todolist API
// @version         1.0
// @description     Boards, goal categories, goals and comments shared between participants.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.WithError(err).Fatal("server initialization failed")
	}

	s.Run()
}
