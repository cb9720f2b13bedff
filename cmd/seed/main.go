package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"usermgmt/internal/client"
	"usermgmt/internal/config"
	"usermgmt/internal/logger"
	"usermgmt/internal/model"
	"usermgmt/internal/service"
	"usermgmt/internal/session"
)

// SeedUser is one entry of the seed document.
type SeedUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// userCreator is the part of the user client the seeder needs.
type userCreator interface {
	CreateUser(ctx context.Context, in model.UserCreate) (*model.User, error)
}

// welcomer is the part of the email client the seeder needs.
type welcomer interface {
	SendWelcomeEmail(ctx context.Context, email, name string) (*model.EmailResponse, error)
}

type seedResult struct {
	created int
	skipped int
	failed  int
	emailed int
}

func main() {
	source := flag.String("source", "users.json", "path or http(s) URL of a JSON array of {name, email}")
	welcome := flag.Bool("welcome", false, "send a welcome email to every created user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logr, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	logr.Infow("starting seed", "source", *source, "welcome", *welcome)
	users, err := loadSeedUsers(*source, cfg.BackendTimeout)
	if err != nil {
		logr.Fatalw("failed to load seed users", "error", err)
	}
	logr.Infow("loaded seed users", "count", len(users))

	userClient := client.NewUserClient(cfg.Crud().URL(config.ContextServer), cfg.BackendTimeout, logr)
	var mailer welcomer
	if *welcome {
		mailer = client.NewEmailClient(cfg.Email().URL(config.ContextServer), cfg.BackendTimeout, logr)
	}

	res := seedUsers(context.Background(), logr, service.NewValidator(), userClient, mailer, users)

	logr.Infow("seed completed",
		"created", res.created,
		"skipped", res.skipped,
		"failed", res.failed,
		"emailed", res.emailed,
	)
	if res.failed > 0 {
		os.Exit(1)
	}
}

// loadSeedUsers reads the seed document from a local file or an HTTP(S) URL.
func loadSeedUsers(source string, timeout time.Duration) ([]SeedUser, error) {
	var users []SeedUser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := resty.New().SetTimeout(timeout).R().SetResult(&users).Get(source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode())
		}
		return users, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	return users, nil
}

// seedUsers creates every valid entry. Invalid entries are skipped, and a nil
// mailer disables welcome emails.
func seedUsers(ctx context.Context, logr *zap.SugaredLogger, v *service.Validator, users userCreator, mailer welcomer, entries []SeedUser) seedResult {
	var res seedResult
	for i, entry := range entries {
		payload, fieldErrs := v.Create(session.FormValues{Name: entry.Name, Email: entry.Email})
		if fieldErrs != nil {
			logr.Warnw("skipping invalid seed user", "index", i, "errors", fieldErrs)
			res.skipped++
			continue
		}

		created, err := users.CreateUser(ctx, payload)
		if err != nil {
			logr.Errorw("failed to create user", "index", i, "email", entry.Email, "error", err)
			res.failed++
			continue
		}
		res.created++

		if mailer == nil {
			continue
		}
		ack, err := mailer.SendWelcomeEmail(ctx, created.Email, created.Name)
		if err != nil {
			logr.Warnw("failed to send welcome email", "user_id", created.ID, "error", err)
			continue
		}
		logr.Infow("welcome email queued", "user_id", created.ID, "task_id", ack.TaskID)
		res.emailed++
	}
	return res
}
