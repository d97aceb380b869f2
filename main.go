package main

import (
	"context"
	"fmt"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/spf13/cobra"

	"github.com/example/shopsphere-client/config"
	"github.com/example/shopsphere-client/modules/cart"
	"github.com/example/shopsphere-client/modules/catalog"
	"github.com/example/shopsphere-client/modules/gateway"
	"github.com/example/shopsphere-client/modules/orders"
	"github.com/example/shopsphere-client/modules/session"
	"github.com/example/shopsphere-client/modules/web"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "shopsphere",
		Short: "ShopSphere storefront client",
		Long:  "A local web client for the ShopSphere storefront API: browse the catalog, manage a cart, place orders, and administer products.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "shopsphere.yaml", "path to the configuration file")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	return root
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout.Std()),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	// Register modules with the framework.
	// Order: independent modules first, then dependent modules.
	gw := gateway.NewModule(gateway.Config{
		BaseURL:        cfg.APIBaseURL,
		CredentialPath: cfg.CredentialDB,
		Timeout:        cfg.RequestTimeout.Std(),
	})
	sess := session.NewModule(gw)
	app.Register(gw)
	app.Register(sess)
	app.Register(cart.NewModule(gw, sess))
	app.Register(catalog.NewModule(gw))
	app.Register(orders.NewModule(gw))
	app.Register(web.NewModule(web.Config{Listen: cfg.Listen}))

	if err := app.Start(context.Background()); err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	log.Printf("ShopSphere client listening on %s (API at %s)", cfg.Listen, cfg.APIBaseURL)
	log.Println("Press Ctrl+C to shutdown gracefully")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout.Std(),
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
	return nil
}
