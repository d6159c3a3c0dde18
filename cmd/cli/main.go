package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"tokodash/internal/config"
	"tokodash/internal/models"
	"tokodash/internal/repositories"
	logx "tokodash/pkg/logger"
	"tokodash/pkg/rabbitmq"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const usage = "expected 'hash-password', 'seed' or 'watch-decisions' subcommand"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		logx.Fatal().Err(err).Msg("failed to load .env")
	}
	logx.Init(logx.LoggerOpts{Environment: os.Getenv("APP_ENV")})

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		logx.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "hash-password":
		return hashPassword(args, out)
	case "seed":
		return seed(args, out)
	case "watch-decisions":
		return watchDecisions(args, out)
	default:
		return fmt.Errorf("unknown command %q: %s", command, usage)
	}
}

// hashPassword prints a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func hashPassword(args []string, out io.Writer) error {
	cmd := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	password := cmd.String("password", "", "Password to hash")
	cost := cmd.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("password is required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), *cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	fmt.Fprintln(out, string(hashed))
	return nil
}

// seed creates the moderation tables and fills them with the sample queue.
func seed(args []string, out io.Writer) error {
	cmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	v := viper.New()
	config.SetDefaults(v)
	v.AutomaticEnv()
	driver := cmd.String("driver", v.GetString("DATABASE_DRIVER"), "Database driver (sqlite or postgres)")
	dsn := cmd.String("dsn", v.GetString("DATABASE_DSN"), "Database DSN")
	if err := cmd.Parse(args); err != nil {
		return err
	}

	db, err := repositories.OpenDatabase(*driver, *dsn)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repositories.Migrate(db); err != nil {
		return err
	}

	items := repositories.SamplePendingItems()
	if err := repositories.Seed(context.Background(), db, items); err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d corrections and %d orders into %s.\n", len(items.Corrections), len(items.Orders), *driver)
	return nil
}

// watchDecisions prints every published moderation decision until
// interrupted. With -apply it also writes them to the moderation database.
func watchDecisions(args []string, out io.Writer) error {
	cmd := flag.NewFlagSet("watch-decisions", flag.ContinueOnError)
	v := viper.New()
	config.SetDefaults(v)
	v.AutomaticEnv()
	amqpURL := cmd.String("url", v.GetString("RABBITMQ_URL"), "RabbitMQ URL")
	apply := cmd.Bool("apply", false, "Apply decisions to the moderation database")
	driver := cmd.String("driver", v.GetString("DATABASE_DRIVER"), "Database driver (sqlite or postgres)")
	dsn := cmd.String("dsn", v.GetString("DATABASE_DSN"), "Database DSN")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *amqpURL == "" {
		return fmt.Errorf("RabbitMQ URL is required")
	}

	var decisions repositories.DecisionRepository
	if *apply {
		db, err := repositories.OpenDatabase(*driver, *dsn)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := repositories.Migrate(db); err != nil {
			return err
		}
		decisions = repositories.NewGORMDecisionRepository(db)
	}

	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: *amqpURL})
	if err != nil {
		return err
	}
	defer client.Close()

	done, err := client.ConsumeDecisions(decisionPrinter(out, decisions))
	if err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logx.Info().Str("queue", rabbitmq.DecisionQueue).Msg("watching moderation decisions")

	select {
	case <-quit:
	case <-done:
		logx.Warn().Msg("decision stream closed")
	}
	return nil
}

// decisionPrinter writes one line per event and, when decisions is set,
// applies the event before acknowledging it.
func decisionPrinter(out io.Writer, decisions repositories.DecisionRepository) func(models.DecisionEvent) error {
	return func(event models.DecisionEvent) error {
		if decisions != nil {
			if err := decisions.Apply(context.Background(), event); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(out, "%s %s #%d %s by %s\n",
			event.DecidedAt.Format("2006-01-02 15:04:05"), event.Kind, event.ItemID, event.Decision, event.DecidedBy)
		return err
	}
}
