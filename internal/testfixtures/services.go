package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/program-scheduler/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

func (f *ServiceFactory) defaults(idGen func() string, now func() time.Time) (func() string, func() time.Time) {
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return idGen, now
}

// ProgramServiceDeps captures dependencies for constructing a program service.
type ProgramServiceDeps struct {
	Repositories application.ProgramRepositories
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewProgramService builds a program service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewProgramService(deps ProgramServiceDeps) *application.ProgramService {
	idGen, now := f.defaults(deps.IDGenerator, deps.Now)
	return application.NewProgramServiceWithLogger(deps.Repositories, idGen, now, deps.Logger)
}

// ReminderServiceDeps captures dependencies for constructing a reminder service.
type ReminderServiceDeps struct {
	Sessions     application.SessionRepository
	Assignments  application.AssignmentRepository
	Participants application.ParticipantRepository
	Sender       application.ReminderSender
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewReminderService builds a reminder service reading time from the factory clock.
func (f *ServiceFactory) NewReminderService(deps ReminderServiceDeps) *application.ReminderService {
	_, now := f.defaults(nil, deps.Now)
	return application.NewReminderServiceWithLogger(
		deps.Sessions,
		deps.Assignments,
		deps.Participants,
		deps.Sender,
		now,
		deps.Logger,
	)
}

// CatalogServiceDeps captures dependencies for constructing a catalog service.
type CatalogServiceDeps struct {
	Catalog      application.CatalogRepository
	Participants application.ParticipantRepository
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewCatalogService builds a catalog service using the supplied dependencies.
func (f *ServiceFactory) NewCatalogService(deps CatalogServiceDeps) *application.CatalogService {
	idGen, now := f.defaults(deps.IDGenerator, deps.Now)
	return application.NewCatalogServiceWithLogger(deps.Catalog, deps.Participants, idGen, now, deps.Logger)
}
