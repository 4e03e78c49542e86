package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/apimock-project/apimock-go/internal/config"
	"github.com/apimock-project/apimock-go/internal/server"
	"github.com/apimock-project/apimock-go/pkg/logger"
)

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Start every configured mock API and block until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			configs, err := config.LoadConfig(configDir)
			if err != nil {
				return err
			}
			if len(configs) == 0 {
				return fmt.Errorf("no *-mock.yaml configs found in %s", configDir)
			}

			var servers []*server.Server
			for i := range configs {
				srv, err := server.New(&configs[i])
				if err != nil {
					return err
				}
				if err := srv.Start(); err != nil {
					stopAll(servers)
					return err
				}
				servers = append(servers, srv)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			logger.Infof("received %s, shutting down", sig)

			stopAll(servers)
			return nil
		},
	}
}

func stopAll(servers []*server.Server) {
	for _, srv := range servers {
		if err := srv.Stop(); err != nil {
			logger.Warnf("failed to stop server: %v", err)
		}
	}
}
