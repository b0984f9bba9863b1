package main

import (
	"github.com/DhavalSuthar-24/huddle/cmd"
	_ "github.com/DhavalSuthar-24/huddle/docs"
)

// @title Huddle API
// @version 1.0
// @description Host, discover and join local sports events.
// @host localhost:8088
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cmd.Execute()
}
