package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/roshna21/DevOps-project/apps/api/echo"
	"github.com/roshna21/DevOps-project/core"
	"github.com/roshna21/DevOps-project/core/account"
	"github.com/roshna21/DevOps-project/core/notification"
	"github.com/roshna21/DevOps-project/core/overlay"
	"github.com/roshna21/DevOps-project/core/student"
	emailsvc "github.com/roshna21/DevOps-project/services/email"
	logsvc "github.com/roshna21/DevOps-project/services/logger"
	rediscache "github.com/roshna21/DevOps-project/storage/cache/redis"
	"github.com/roshna21/DevOps-project/storage/database"
	dummydb "github.com/roshna21/DevOps-project/storage/database/dummy"
	sqlxrepos "github.com/roshna21/DevOps-project/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// ClosersParam collects every resource to release on shutdown.
type ClosersParam struct {
	dig.In
	Closers []io.Closer `group:"closers"`
}

// Storage is the record store selected by the configuration.
type Storage struct {
	dig.Out
	Students      student.Repository
	Accounts      account.Repository
	Notifications notification.Repository
	Closer        io.Closer `group:"closers"`
}

// OverlayStore is the overlay backend selected by the configuration.
type OverlayStore struct {
	dig.Out
	Store  overlay.Store
	Closer io.Closer `group:"closers"`
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	logger := loggerParam.Logger

	switch conf.Storage.Backend {
	case core.StoragePostgres:
		setUp := func() (Storage, error) {
			if err := database.CreateIfNotExist(conf); err != nil {
				return Storage{}, err
			}

			db, err := database.Open(conf)
			if err != nil {
				return Storage{}, err
			}

			if err = database.SetupMigrations(); err != nil {
				return Storage{}, err
			}
			if err = database.Migrate(db.DB); err != nil {
				return Storage{}, err
			}
			return Storage{
				Students:      sqlxrepos.NewStudentRepository(db),
				Accounts:      sqlxrepos.NewAccountRepository(db),
				Notifications: sqlxrepos.NewNotificationRepository(db),
				Closer:        db,
			}, nil
		}

		s, err := setUp()
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		logger.Info("Using postgres record store")
		return s

	case core.StorageDummy:
		var opts []dummydb.Option
		if !conf.Storage.SubjectAttendance {
			opts = append(opts, dummydb.WithoutSubjectAttendance())
			logger.Warn("Subject-level attendance disabled, views fall back to monthly records")
		}
		db, _ := dummydb.Open(opts...)
		if conf.Storage.SeedDemoData {
			db.Seed(time.Now())
			logger.Info("Using in-memory record store with demo data")
		} else {
			logger.Info("Using empty in-memory record store")
		}
		return Storage{
			Students:      dummydb.NewStudentRepository(db),
			Accounts:      dummydb.NewAccountRepository(db),
			Notifications: dummydb.NewNotificationRepository(db),
			Closer:        db,
		}
	}

	logger.Fatal(fmt.Sprintf("unknown storage backend %q", conf.Storage.Backend))
	return Storage{}
}

// newOverlayStore falls back to process memory when Redis cannot be reached:
// pending edits are then lost on restart, but reads keep working.
func newOverlayStore(conf *core.Config, logger core.Logger) OverlayStore {
	memory := OverlayStore{Store: overlay.NewMemoryStore(), Closer: nopCloser{}}

	switch conf.Overlay.Backend {
	case core.OverlayRedis:
		client, err := rediscache.NewClient(context.Background(), conf)
		if err != nil {
			logger.Warn(fmt.Sprintf("overlay: redis unavailable, using memory: %v", err), err)
			return memory
		}
		store := rediscache.NewStore(client, conf.Overlay.Namespace)
		return OverlayStore{Store: store, Closer: store}
	case core.OverlayMemory:
		return memory
	}

	logger.Warn(fmt.Sprintf("overlay: unknown backend %q, using memory", conf.Overlay.Backend))
	return memory
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newOverlayStore))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))

	// services, wired through the interfaces they consume
	must(c.Provide(func(repo account.Repository) notification.ParentFinder { return repo }))
	must(c.Provide(notification.NewService))
	must(c.Provide(func(svc *notification.Service) student.Notifier { return svc }))
	must(c.Provide(student.NewService))
	must(c.Provide(func(svc *student.Service) account.StudentService { return svc }))
	must(c.Provide(account.NewService))

	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
