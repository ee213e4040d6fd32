package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/dmitrijs2005/cvgenius/internal/server"
	"github.com/dmitrijs2005/cvgenius/internal/server/config"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
)

func main() {
	figure.NewFigure("CVGenius", "small", true).Print()
	fmt.Printf("Build version: %s\nBuild date: %s\n\n", buildVersion, buildDate)

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
