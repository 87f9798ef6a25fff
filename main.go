package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/lumina-events/invitation-api/cmd/app"
)

// @title           Lumina invitation API
// @version         1.0
// @description     Guest admission, venue voting and ticketing for a private event.
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
