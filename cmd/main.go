// Package main provides the entry point for the streamgrab service.
// @title Stream Grab API
// @version 2.0
// @description Resolves direct audio and video stream URLs for media pages behind a shared API key.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key authentication

package main

import (
	"os"

	_ "github.com/denisAlshanov/streamgrab/docs" // Import for swagger docs
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
