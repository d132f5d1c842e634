package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/config"
	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/sandbox"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/server"
	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/store"
)

func exit(msg string, exitValue int) {
	fmt.Println(msg)
	os.Exit(exitValue)
}

func openDB(cfg *config.Config) *store.Store {
	db, err := store.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		exit(fmt.Sprintf("[!] %s", err), 1)
	}
	return db
}

func handleMigrate(ctx context.Context, db *store.Store) {
	if err := db.Migrate(ctx); err != nil {
		exit(fmt.Sprintf("[!] %s", err), 1)
	}
	if err := sandbox.NewProvisioner(db).EnsureDemo(ctx); err != nil {
		exit(fmt.Sprintf("[!] Could not prepare the demo environment: %s", err), 1)
	}
	exit("[*] Database schema has changed successfully.", 0)
}

func flushDB(ctx context.Context, db *store.Store) {
	if err := db.Flush(ctx); err != nil {
		exit(fmt.Sprintf("[!] %s", err), 1)
	}
	exit("[*] Database has been flushed successfully.", 0)
}

func handleAdd(ctx context.Context, db *store.Store, name string, owner string) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	env := &m.Environment{Name: name, OwnerID: owner, IsActive: true}
	if errs := env.Validate(); len(errs) != 0 {
		exit("[!] You forgot to provide an environment name.", 1)
	}

	fmt.Printf("[*] Creating %s environment for %s.\n", name, owner)
	if err := sandbox.NewProvisioner(db).CreateEnvironment(ctx, env); err != nil {
		exit(fmt.Sprintf("[!] Could not create environment: %s", err), 1)
	}
	fmt.Printf("[+] Environment %d created with %d endpoints.\n", env.ID, len(env.Endpoints))
}

func handleRemove(ctx context.Context, db *store.Store, id uint) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	switch id {
	case 0:
		exit("[!] You forgot to provide an environment id.", 1)
	case m.DemoEnvironmentID:
		exit("[!] The demo environment cannot be removed.", 1)
	}

	fmt.Printf("[*] Removing environment %d.\n", id)
	if err := db.DeleteEnvironment(ctx, id); err != nil {
		exit(fmt.Sprintf("[!] Could not remove environment %d: %s", id, err), 1)
	}
}

func main() {
	ctx := context.Background()
	cfg := config.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	var (
		migrate bool
		flush   bool

		name  string
		owner string
		envID uint
	)

	flag.BoolVar(&migrate, "migrate", false, "migrate schema to database.")
	flag.BoolVar(&flush, "flush", false, "flush database.")

	serve := flag.NewFlagSet("serve", flag.ExitOnError)
	serve.StringVar(&cfg.Addr, "addr", cfg.Addr, "address to listen on.")

	add := flag.NewFlagSet("add", flag.ExitOnError)
	add.StringVar(&name, "name", "", "name of the new sandbox environment.")
	add.StringVar(&owner, "owner", "guest", "owner of the new sandbox environment.")

	remove := flag.NewFlagSet("remove", flag.ExitOnError)
	remove.UintVar(&envID, "id", 0, "id of the sandbox environment to remove.")

	flag.Parse()

	switch {
	case migrate:
		handleMigrate(ctx, openDB(cfg))
	case flush:
		flushDB(ctx, openDB(cfg))
	}

	args := flag.Args()
	if len(args) < 1 {
		exit("Please use -h / --help for more information", 1)
	}

	switch args[0] {
	case "serve":
		serve.Parse(args[1:])
		if err := server.Run(cfg, log); err != nil {
			log.Error("server stopped", "err", err)
			os.Exit(1)
		}

	case "add":
		add.Parse(args[1:])
		db := openDB(cfg)
		defer db.Close()
		handleAdd(ctx, db, name, owner)

	case "remove":
		remove.Parse(args[1:])
		db := openDB(cfg)
		defer db.Close()
		handleRemove(ctx, db, envID)

	default:
		exit(fmt.Sprintf("[!] Unknown command %q, use -h / --help for more information", args[0]), 1)
	}
}
