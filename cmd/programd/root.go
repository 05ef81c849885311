package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/example/program-scheduler/internal/application"
	"github.com/example/program-scheduler/internal/config"
	"github.com/example/program-scheduler/internal/logging"
	"github.com/example/program-scheduler/internal/notify"
	"github.com/example/program-scheduler/internal/output"
	"github.com/example/program-scheduler/internal/persistence/sqlite"
)

// app carries the dependencies shared by every subcommand. Fields left nil
// by tests are filled from the environment when the command starts.
type app struct {
	configFile string
	cfg        config.Config
	logger     *slog.Logger
	logOut     io.Writer
	ui         *output.UI
	now        func() time.Time
	newID      func() string
}

func newApp() *app {
	return &app{
		logOut: os.Stderr,
		ui:     output.New(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "programd",
		Short: "Event program scheduler",
		Long: `programd manages an event program: sessions, room conflicts and
WhatsApp reminders for the participants assigned to each session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "YAML config file (default ./program.yaml when present)")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newConflictsCmd(a),
		newRemindersCmd(a),
		newSendRemindersCmd(a),
		newExportCmd(a),
	)
	return root
}

// init loads .env and the configuration, then builds the logger.
func (a *app) init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger == nil {
		a.logger = logging.New(cfg.LogLevel, a.logOut)
	}
	return nil
}

// openStore opens the configured database and applies pending migrations.
func (a *app) openStore(ctx context.Context) (*sqlite.Store, error) {
	store, err := sqlite.Open(a.cfg.SQLiteDSN, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return store, nil
}

type services struct {
	program   *application.ProgramService
	reminders *application.ReminderService
	catalog   *application.CatalogService
}

// buildServices wires the application services onto store. Reminder delivery
// is only available when the WhatsApp credentials are configured.
func (a *app) buildServices(store *sqlite.Store) (services, error) {
	sessions := newSessionRepositoryAdapter(store.Sessions())
	assignments := newAssignmentRepositoryAdapter(store.Assignments())
	participants := newParticipantRepositoryAdapter(store.Participants())

	program := application.NewProgramServiceWithLogger(application.ProgramRepositories{
		Sessions:     sessions,
		Assignments:  assignments,
		Participants: participants,
		Changes:      newScheduleChangeRepositoryAdapter(store.ScheduleChanges()),
	}, a.newID, a.now, a.logger).WithWarningCacheTTL(a.cfg.Conflicts.CacheTTL)

	var sender application.ReminderSender
	if a.cfg.WhatsApp.Configured() {
		s, err := a.newSender(store)
		if err != nil {
			return services{}, err
		}
		sender = s
	}

	return services{
		program:   program,
		reminders: application.NewReminderServiceWithLogger(sessions, assignments, participants, sender, a.now, a.logger),
		catalog:   application.NewCatalogServiceWithLogger(newCatalogRepositoryAdapter(store.Catalog()), participants, a.newID, a.now, a.logger),
	}, nil
}

func (a *app) newSender(store *sqlite.Store) (*notify.Sender, error) {
	client, err := notify.NewWhatsAppClient(notify.WhatsAppConfig{
		BaseURL:     a.cfg.WhatsApp.BaseURL,
		InstanceID:  a.cfg.WhatsApp.InstanceID,
		APIToken:    a.cfg.WhatsApp.APIToken,
		CountryCode: a.cfg.WhatsApp.CountryCode,
	})
	if err != nil {
		return nil, err
	}
	return notify.NewSender(client, store.Assignments(),
		notify.WithDelay(a.cfg.Reminders.SendDelay),
		notify.WithClock(a.now),
		notify.WithLocation(a.cfg.Reminders.Location),
		notify.WithMessageLog(newMessageLogAdapter(store.Messages())),
		notify.WithLogger(a.logger),
	), nil
}

// withStore runs fn against freshly wired services and closes the store afterwards.
func (a *app) withStore(ctx context.Context, fn func(*sqlite.Store, services) error) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			a.logger.Error("failed to close storage", "error", cerr)
		}
	}()

	svcs, err := a.buildServices(store)
	if err != nil {
		return err
	}
	return fn(store, svcs)
}

// displayTime renders t in the configured reminder time zone.
func (a *app) displayTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	if a.cfg.Reminders.Location != nil {
		t = t.In(a.cfg.Reminders.Location)
	}
	return t.Format("Mon 02 Jan 15:04")
}
