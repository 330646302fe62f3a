package cmd

import (
	"mod-loader/core/loader"
	"mod-loader/core/logger"
	"mod-loader/core/middleware/auth"
	"mod-loader/core/middleware/rayid"
	"mod-loader/feature/console"
	"mod-loader/feature/mods"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load mods and serve the console",
	Long:  `Runs a load cycle, then exposes the resource store and mod reports over HTTP until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()
		logg := rt.log
		zap.ReplaceGlobals(logg)

		svc := mods.NewService(rt.pipeline, rt.sources, rt.history, logger.Component(logg, "mods"))
		if _, err := svc.Reload(cmd.Context()); err != nil {
			return err
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             rt.cfg.Server.FiberBodyLimit(),
		})

		mgr := loader.NewManager()
		mgr.Register(mods.NewFeature(svc))
		mgr.Register(console.NewFeature(rt.store, logger.Component(logg, "console")))

		// RayID must be first so every later log line carries it.
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})
		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			return err
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("address", rt.cfg.Server.Address()))
			errCh <- app.Listen(rt.cfg.Server.Address())
		}()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		logg.Info("Shutting down server...")
		return app.ShutdownWithTimeout(rt.cfg.Server.ShutdownTimeout)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
