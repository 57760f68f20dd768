package main

import "mingle/internal/app"

// @title           Mingle API
// @version         1.0
// @description     Realtime chat and notification backend for the Mingle social network.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	app.Run()
}
