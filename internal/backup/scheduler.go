package backup

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"soulhealing/internal/providers"
	"soulhealing/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

type SchedulerInterface interface {
	Init()
	Stop()
	Persist() error
	Status() Status
}

// Status describes the most recent automatic backup attempt.
type Status struct {
	Interval  time.Duration
	LastRun   time.Time
	LastPath  string
	LastError string
}

// Scheduler writes automatic backups into the backup directory and keeps
// only the newest ones.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	service *Service
	files   *FileMedium
	cron    *gron.Cron
	opsMu   sync.Mutex

	statusMu sync.RWMutex
	status   Status
}

func NewScheduler(config *structures.Config, logger providers.Logger, service *Service) SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		service: service,
		files:   NewFileMedium(config.Backup.Dir),
		status:  Status{Interval: config.Backup.Interval},
	}
}

func (s *Scheduler) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Scheduler) record(path string, err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.LastRun = s.service.now()
	s.status.LastPath = path
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
}

func (s *Scheduler) Init() {
	interval := s.config.Backup.Interval
	if interval <= 0 {
		s.logger.Infof(providers.TypeBackup, "Automatic backups disabled")
		return
	}

	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(interval), func() {
		if err := s.Persist(); err != nil {
			s.logger.Errorf(providers.TypeBackup, "Scheduled backup failed: %s", err)
		}
	})
	s.cron.Start()
	s.logger.Infof(providers.TypeBackup, "Automatic backups every %s into %s", interval, s.config.Backup.Dir)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Persist writes one backup file now and prunes old ones.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	path, err := s.persist()
	s.record(path, err)
	return err
}

func (s *Scheduler) persist() (string, error) {
	start := time.Now()
	defer func() { s.service.metrics.ObserveBackupDuration("scheduled", time.Since(start)) }()

	data, err := s.service.Export(context.Background())
	if err != nil {
		return "", err
	}
	delivery, err := s.files.Deliver(FileName(s.service.now()), data)
	if err != nil {
		return "", err
	}
	s.logger.Infof(providers.TypeBackup, "Backup written to %s", delivery.Path)

	return delivery.Path, s.prune()
}

// prune removes the oldest backup files beyond the configured count. File
// names sort chronologically.
func (s *Scheduler) prune() error {
	keep := s.config.Backup.Keep
	if keep <= 0 {
		return nil
	}

	entries, err := os.ReadDir(s.config.Backup.Dir)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isBackupFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= keep {
		return nil
	}

	slices.Sort(names)
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(s.config.Backup.Dir, name)); err != nil {
			return err
		}
		s.logger.Debugf(providers.TypeBackup, "Removed old backup %s", name)
	}
	return nil
}
