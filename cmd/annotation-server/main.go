package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/gbif/occurrence-annotation/dao/store"
	"github.com/gbif/occurrence-annotation/internal"
	"github.com/gbif/occurrence-annotation/pkg/config"
)

// @title Occurrence Annotation API
// @version 1.0.0
// @description Rule-based annotation service for occurrence records.
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Obtain a token from /auth/login and supply it as 'Bearer ${TOKEN}'.
func main() {
	// all timestamps are stored and served in UTC
	time.Local = time.UTC

	// variable overrides in local development
	if gin.Mode() == gin.DebugMode {
		if err := godotenv.Load(".debug.env"); err != nil {
			klog.Infof("no .debug.env file loaded: %v", err)
		}
	}

	conf := config.GetConfig()

	if err := store.InitDB(conf); err != nil {
		klog.Fatalf("unable to init database: %v", err)
	}
	if err := store.Migrate(store.DB); err != nil {
		klog.Fatalf("unable to migrate database: %v", err)
	}

	backend := internal.Register(store.DB)
	klog.Infof("starting server on %s", conf.ServerAddr)
	if err := backend.R.Run(conf.ServerAddr); err != nil {
		klog.Fatalf("server exited: %v", err)
	}
}
