package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/promosign/spin-api/cmd/app"
)

// @contact.name   API Support
// @contact.email  support@promosign.io
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
