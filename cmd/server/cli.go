package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	_ "github.com/artem13815/careerassist/docs"

	"github.com/artem13815/careerassist/api/http"
	"github.com/artem13815/careerassist/api/http/handlers"
	"github.com/artem13815/careerassist/pkg/config"
	"github.com/artem13815/careerassist/pkg/logging"
	"github.com/artem13815/careerassist/pkg/security/jwt"
)

// options are command-line overrides applied on top of config.Load.
type options struct {
	envFile  string
	port     string
	logLevel string
}

func commonFlags(o *options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "env-file",
			Usage:       "Path to a .env file",
			Value:       ".env",
			Destination: &o.envFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "debug, info, warn or error",
			Sources:     cli.EnvVars("LOG_LEVEL"),
			Destination: &o.logLevel,
		},
	}
}

func (o *options) load() config.Config {
	cfg := config.Load(o.envFile)
	if o.port != "" {
		cfg.Port = o.port
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	logging.SetDefault(logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "careerassist",
	}))
	return cfg
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:           "careerassist",
		Usage:          "Career-advice chat service",
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCommand(),
			askCommand(),
			tokenCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	var o options
	flags := append(commonFlags(&o), &cli.StringFlag{
		Name:        "port",
		Usage:       "HTTP listen port",
		Sources:     cli.EnvVars("PORT"),
		Destination: &o.port,
	})

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := o.load()
			logger := logging.Default()

			deps, err := build(ctx, cfg)
			if err != nil {
				return err
			}
			defer deps.close()

			app := fiber.New(fiber.Config{DisableStartupMessage: true})
			app.Use(http.RequestLogger(logger))
			http.Register(app,
				handlers.NewChatHandler(deps.chat),
				handlers.NewHealthHandler(deps.readiness),
				jwt.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer),
			)
			// Swagger UI
			app.Get("/swagger/*", swagger.HandlerDefault)

			go func() {
				<-ctx.Done()
				_ = app.ShutdownWithTimeout(5 * time.Second)
			}()

			logger.Info("HTTP server listening", "port", cfg.Port, "provider", cfg.LLMProvider, "store", cfg.StoreBackend)
			if err := app.Listen(":" + cfg.Port); err != nil {
				return goerr.Wrap(err, "server stopped")
			}
			return nil
		},
	}
}

func askCommand() *cli.Command {
	var (
		o        options
		userID   string
		location string
	)
	flags := append(commonFlags(&o),
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "Conversation user id",
			Value:       "default_user",
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "location",
			Aliases:     []string{"l"},
			Usage:       "Location for job and salary lookups",
			Destination: &location,
		},
	)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one message through the chat pipeline and print the reply",
		ArgsUsage: "<message>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			message := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if message == "" {
				return goerr.New("message is required")
			}
			deps, err := build(ctx, o.load())
			if err != nil {
				return err
			}
			defer deps.close()

			reply, err := deps.chat.HandleMessage(ctx, userID, message, location)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, reply.Response)
			for i, j := range reply.Jobs {
				fmt.Fprintf(os.Stdout, "  %d. %s at %s in %s %s\n", i+1, j.Title, j.Company, j.Location, j.ApplyLink)
			}
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	var (
		o       options
		subject string
	)
	flags := append(commonFlags(&o), &cli.StringFlag{
		Name:        "subject",
		Aliases:     []string{"s"},
		Usage:       "User id to put into the token subject",
		Required:    true,
		Destination: &subject,
	})

	return &cli.Command{
		Name:  "token",
		Usage: "Issue a bearer token for the chat API (requires JWT_SECRET)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := o.load()
			gen := jwt.NewGenerator(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
			token, err := gen.Generate(ctx, subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, token)
			return nil
		},
	}
}
