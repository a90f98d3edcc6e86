package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/simukka/drumpal/server"
)

var serveConfig server.Config

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the HTTP server for the browser toy: sound generation, saved
kits and share links. Set GEMINI_API_KEY to design sounds with Gemini;
without it a keyword generator is used.

Example:
  drumpal serve --addr :8080 --static ./web`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfig.Addr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveConfig.KitDir, "kits", "kits", "Directory for saved kits and generated sounds")
	serveCmd.Flags().StringVar(&serveConfig.StaticDir, "static", "", "Directory with the compiled browser app")
	serveCmd.Flags().StringVar(&serveConfig.Model, "model", "", "Default Gemini model")
	serveCmd.Flags().BoolVar(&serveConfig.DevMode, "dev", false, "Use the keyword generator even when a key is set")
}

func runServe(cmd *cobra.Command, args []string) error {
	log, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := serveConfig
	cfg.GeminiKey = os.Getenv("GEMINI_API_KEY")

	srv, err := server.New(cfg, server.WithLogger(log))
	if err != nil {
		return err
	}
	return srv.Run(context.Background())
}
