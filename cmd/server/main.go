package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/golovatskygroup/mcp-ado/internal/ado"
	"github.com/golovatskygroup/mcp-ado/internal/config"
	"github.com/golovatskygroup/mcp-ado/internal/govern"
	"github.com/golovatskygroup/mcp-ado/internal/server"
	"github.com/golovatskygroup/mcp-ado/internal/tools"
)

// fileConfig is the optional YAML config file shape. Environment variables
// override anything set here, so secrets can stay out of files.
type fileConfig struct {
	Upstream config.Config `yaml:"upstream"`
	Pacing   govern.Config `yaml:"pacing"`
}

func main() {
	configPath := flag.String("config", "", "Path to optional YAML config file")
	flag.Parse()

	var fc fileConfig
	fc.Pacing = govern.DefaultConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			fatalf("reading config: %v", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			fatalf("parsing config: %v", err)
		}
	}

	envCfg, _ := config.FromEnv()
	cfg := config.Merge(fc.Upstream, envCfg)
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	client := ado.New(cfg, govern.New(fc.Pacing))
	srv := server.New(tools.NewHandler(client))
	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		fatalf("server: %v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "mcp-ado: "+format+"\n", args...)
	os.Exit(1)
}
