// Command admin runs operator tasks against the configured database:
// applying migrations, creating dashboard accounts and generating the
// monthly payment records.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"robolab-portal/config"
	"robolab-portal/internal/model"
	"robolab-portal/internal/repository"
	"robolab-portal/internal/service"
	"robolab-portal/pkg/database"
	applogger "robolab-portal/pkg/logger"
)

const usage = `usage: admin [-config path] <command> [flags]

commands:
  migrate                          apply the schema migrations
  schema                           compare the live schema with the models
  createadmin -email E -name N     create (or re-key) an administrator
  generatepayments                 create the missing monthly payment records
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "admin: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin *os.File, stdout io.Writer) error {
	global := flag.NewFlagSet("admin", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	configPath := global.String("config", "", "path to the config file")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	cmd, cmdArgs, err := parseCommand(global.Args())
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := applogger.NewLogger(&cfg.Log, "admin")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, logger, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch cmd {
	case "migrate":
		return migrateCmd(db, logger, stdout)
	case "schema":
		return schemaCmd(ctx, db, stdout)
	case "createadmin":
		opts, err := parseCreateAdmin(cmdArgs)
		if err != nil {
			return err
		}
		password, err := readPassword(stdin, stdout)
		if err != nil {
			return err
		}
		opts.Password = password
		return createAdmin(ctx, repository.NewRepository(db).AdminUser, opts, stdout)
	case "generatepayments":
		svc := service.NewPaymentService(cfg, repository.NewRepository(db), logger)
		res, err := svc.Generate(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "created %d payment records for %d registrations (%s to %s)\n",
			res.Created, res.Registrations, res.Months[0], res.Months[len(res.Months)-1])
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

var commands = map[string]bool{
	"migrate":          true,
	"schema":           true,
	"createadmin":      true,
	"generatepayments": true,
}

// parseCommand splits the positional arguments into the command name and
// its own flags.
func parseCommand(args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: missing command", errUsage)
	}
	if !commands[args[0]] {
		return "", nil, fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	return args[0], args[1:], nil
}

func migrateCmd(db *gorm.DB, logger *zap.Logger, stdout io.Writer) error {
	if err := database.Migrate(db, logger, model.All()...); err != nil {
		return err
	}
	if db.Dialector.Name() == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		version, dirty, err := database.MigrationVersion(sqlDB)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "schema at version %d (dirty=%t)\n", version, dirty)
		return nil
	}
	fmt.Fprintln(stdout, "schema migrated")
	return nil
}

func schemaCmd(ctx context.Context, db *gorm.DB, stdout io.Writer) error {
	report, err := database.CheckSchema(ctx, db, model.All()...)
	if err != nil {
		return err
	}
	for _, t := range report.Tables {
		switch {
		case !t.Exists:
			fmt.Fprintf(stdout, "%-20s missing\n", t.Table)
		case len(t.MissingColumns) > 0:
			fmt.Fprintf(stdout, "%-20s missing columns: %v\n", t.Table, t.MissingColumns)
			if len(t.MissingFields) > 0 {
				fmt.Fprintf(stdout, "%-20s affected fields: %v\n", "", t.MissingFields)
			}
		default:
			fmt.Fprintf(stdout, "%-20s ok\n", t.Table)
		}
	}
	return report.Err()
}
