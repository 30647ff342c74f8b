package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/techcore/gpu3d/internal/assets"
	"github.com/techcore/gpu3d/internal/engine/scene"
	"github.com/techcore/gpu3d/internal/gltfload"
	"github.com/techcore/gpu3d/internal/logger"
	"github.com/techcore/gpu3d/internal/viewer"
)

var (
	serveDir      string
	serveAddr     string
	serveAllowAll bool

	fetchOutput string
	fetchVerify bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a directory containing the model asset over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Assets.ServeDir
		if serveDir != "" {
			dir = serveDir
		}
		addr := cfg.Assets.ServeAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := assets.NewServer(assets.ServerConfig{Addr: addr, Dir: dir, AllowAll: serveAllowAll}, logger.Named("serve"))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down asset server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which candidate model paths the asset origin serves",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, vc, err := newManager()
		if err != nil {
			return err
		}
		if m.Environment().LocalFile() {
			return fmt.Errorf("probe: %w", assets.ErrLocalFile)
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "origin: %s\n", m.Environment().Base())
		for _, p := range assets.Candidates(vc.ModelPath, vc.AlternativePaths) {
			status := "missing"
			if m.Exists(ctx, p) {
				status = "ok"
			}
			fmt.Fprintf(out, "  %-8s %s\n", status, m.Environment().URL(p))
		}
		fmt.Fprintf(out, "resolved: %s\n", m.Resolve(ctx, vc.ModelPath, vc.AlternativePaths))
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the model asset, optionally checking that it decodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, vc, err := newManager()
		if err != nil {
			return err
		}
		if fetchOutput == "" {
			return errors.New("fetch: --output is required")
		}

		ctx := cmd.Context()
		path := vc.ModelPath
		if vc.ProbeAlternatives {
			path = m.Resolve(ctx, vc.ModelPath, vc.AlternativePaths)
		}
		if vc.LoadTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, vc.LoadTimeout)
			defer cancel()
		}

		var bar *progressbar.ProgressBar
		data, err := m.Load(ctx, path, func(loaded, total int64) {
			if bar == nil {
				bar = progressbar.DefaultBytes(total, "downloading "+path)
			}
			_ = bar.Set64(loaded)
		})
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}

		if fetchVerify {
			root, err := gltfload.Decode(data)
			if err != nil {
				return fmt.Errorf("fetch: %s does not decode: %w", path, err)
			}
			meshes := 0
			root.Traverse(func(n *scene.Node) {
				if n.IsMesh() {
					meshes++
				}
			})
			scene.DisposeTree(root)
			fmt.Fprintf(cmd.OutOrStdout(), "decoded %d meshes\n", meshes)
		}

		if err := os.WriteFile(fetchOutput, data, 0644); err != nil {
			return fmt.Errorf("fetch: writing %s: %w", fetchOutput, err)
		}
		logger.Info("asset saved", zap.String("path", fetchOutput), zap.Int("bytes", len(data)))
		return nil
	},
}

// newManager builds an asset manager from the loaded configuration.
func newManager() (*assets.Manager, viewer.Config, error) {
	vc := viewer.OverridesFromConfig(cfg.Viewer).Resolve()
	env, err := assets.NewEnvironment(cfg.Assets.BaseURL)
	if err != nil {
		return nil, vc, err
	}
	log := logger.Named("assets")
	m := assets.NewManager(env,
		&assets.HTTPProber{Timeout: cfg.Assets.ProbeTimeout, Log: log},
		&assets.Fetcher{Log: log},
		nil, log)
	return m, vc, nil
}

func init() {
	serveCmd.Flags().StringVar(&serveDir, "dir", "", "directory to serve (default: assets.serve_dir)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: assets.serve_addr)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow every CORS origin")

	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "file to write the asset to")
	fetchCmd.Flags().BoolVar(&fetchVerify, "verify", false, "decode the asset before saving it")

	rootCmd.AddCommand(serveCmd, probeCmd, fetchCmd)
}
