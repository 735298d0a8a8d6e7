// Command pressauth-maint performs offline maintenance against the
// auth data files of a pressassist install: sweeping expired sessions,
// pruning rate-limit windows, trimming the audit log, and managing the
// user file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/pressassist/pressauth"
	"github.com/pressassist/pressauth/password"
	"github.com/pressassist/pressauth/userstore"
)

func main() {
	var (
		envFile = flag.String("env-file", ".env", "dotenv file to load settings from")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := pressauth.ConfigFromEnv(*envFile)
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	cmd, args := flag.Arg(0), flag.Args()[1:]

	if err := run(ctx, logger, cfg, cmd, args); err != nil {
		logger.Error(cmd, "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg pressauth.Config, cmd string, args []string) error {
	switch cmd {
	case "cleanup-sessions":
		return cleanupSessions(ctx, logger, cfg)
	case "cleanup-ratelimit":
		return cleanupRateLimits(ctx, logger, cfg)
	case "cleanup-audit":
		return cleanupAudit(logger, cfg, args)
	case "create-user":
		return createUser(ctx, logger, cfg, args)
	case "list-users":
		return listUsers(ctx, cfg, args)
	case "set-password":
		return setPassword(ctx, logger, cfg, args)
	case "hash-password":
		return hashPassword(cfg, args)
	case "gen-password":
		return genPassword(args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: pressauth-maint [flags] <command> [args]

commands:
  cleanup-sessions             remove expired and corrupt session records
  cleanup-ratelimit            prune rate-limit attempts outside the window
  cleanup-audit <file>         drop audit entries older than the retention age
  create-user <users-file> <username> <role>
                               add a user with a generated password
  list-users <users-file>      print the users on record
  set-password <users-file> <username>
                               set a generated password for a user
  hash-password <plaintext>    print the bcrypt hash for a password
  gen-password [length]        print a random password

flags:
`)
	flag.PrintDefaults()
}

// newManager builds a store-only facade for the sweep commands. No
// credential source is needed, so a closed stub stands in for one.
func newManager(cfg pressauth.Config) (*pressauth.Manager, error) {
	cfg.Audit.Enabled = false
	return pressauth.New().
		WithConfig(cfg).
		WithCredentials(noCredentials{}).
		Build()
}

type noCredentials struct{}

func (noCredentials) Lookup(context.Context, string) (pressauth.Credential, error) {
	return pressauth.Credential{}, pressauth.ErrUserNotFound
}

func cleanupSessions(ctx context.Context, logger *slog.Logger, cfg pressauth.Config) error {
	if cfg.Storage.SessionFile == "" {
		return fmt.Errorf("PRESSAUTH_SESSION_FILE is not set")
	}
	m, err := newManager(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	removed, err := m.CleanupExpiredSessions(ctx)
	if err != nil {
		return err
	}
	logger.Info("cleanup-sessions done", "removed", removed, "file", cfg.Storage.SessionFile)
	return nil
}

func cleanupRateLimits(ctx context.Context, logger *slog.Logger, cfg pressauth.Config) error {
	if cfg.Storage.RateLimitFile == "" {
		return fmt.Errorf("PRESSAUTH_RATE_LIMIT_FILE is not set")
	}
	m, err := newManager(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	removed, err := m.CleanupRateLimits(ctx)
	if err != nil {
		return err
	}
	logger.Info("cleanup-ratelimit done", "removed", removed, "file", cfg.Storage.RateLimitFile)
	return nil
}

func cleanupAudit(logger *slog.Logger, cfg pressauth.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("cleanup-audit requires the audit file path")
	}
	sink, err := pressauth.NewFileSink(args[0])
	if err != nil {
		return err
	}

	removed, err := sink.CleanupOldEntries(cfg.Audit.MaxEntryAge)
	if err != nil {
		return err
	}
	logger.Info("cleanup-audit done", "removed", removed, "file", args[0], "max_age", cfg.Audit.MaxEntryAge)
	return nil
}

func createUser(ctx context.Context, logger *slog.Logger, cfg pressauth.Config, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("create-user requires <users-file> <username> <role>")
	}
	path, username, role := args[0], args[1], args[2]

	store, err := userstore.NewFileStore(path, userstore.WithLockTimeout(cfg.Storage.LockTimeout))
	if err != nil {
		return err
	}
	hasher, err := password.NewBcrypt(password.Config{Cost: cfg.Password.Cost})
	if err != nil {
		return err
	}

	plaintext, err := password.GeneratePassword(16)
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		return err
	}

	u, err := store.Create(ctx, userstore.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return err
	}

	logger.Info("user created", "username", u.Username, "role", u.Role, "id", u.ID)
	fmt.Printf("password: %s\n", plaintext)
	return nil
}

func listUsers(ctx context.Context, cfg pressauth.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("list-users requires the users file path")
	}
	store, err := userstore.NewFileStore(args[0], userstore.WithLockTimeout(cfg.Storage.LockTimeout))
	if err != nil {
		return err
	}
	users, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		state := "active"
		if !u.Active {
			state = "disabled"
		}
		last := "never"
		if u.LastLogin != nil {
			last = u.LastLogin.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-20s %-8s %-8s last login %s\n", u.Username, u.Role, state, last)
	}
	return nil
}

func setPassword(ctx context.Context, logger *slog.Logger, cfg pressauth.Config, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("set-password requires <users-file> <username>")
	}
	path, username := args[0], args[1]

	store, err := userstore.NewFileStore(path, userstore.WithLockTimeout(cfg.Storage.LockTimeout))
	if err != nil {
		return err
	}
	hasher, err := password.NewBcrypt(password.Config{Cost: cfg.Password.Cost})
	if err != nil {
		return err
	}

	plaintext, err := password.GeneratePassword(16)
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		return err
	}

	if err := store.SetPassword(ctx, username, hash); err != nil {
		return err
	}

	logger.Info("password set", "username", username)
	fmt.Printf("password: %s\n", plaintext)
	return nil
}

func hashPassword(cfg pressauth.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("hash-password requires the plaintext argument")
	}
	hasher, err := password.NewBcrypt(password.Config{Cost: cfg.Password.Cost})
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(args[0])
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func genPassword(args []string) error {
	length := 16
	if len(args) == 1 {
		if _, err := fmt.Sscanf(args[0], "%d", &length); err != nil {
			return fmt.Errorf("bad length %q", args[0])
		}
	}
	plaintext, err := password.GeneratePassword(length)
	if err != nil {
		return err
	}
	fmt.Println(plaintext)
	return nil
}

