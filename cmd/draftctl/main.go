package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/draftctl/draftctl/internal/cli"
	"github.com/draftctl/draftctl/internal/config"
	"github.com/draftctl/draftctl/internal/db"
	"github.com/draftctl/draftctl/internal/domain"
	"github.com/draftctl/draftctl/internal/repository"
	"github.com/draftctl/draftctl/internal/service"
	"github.com/draftctl/draftctl/internal/template"
	"github.com/draftctl/draftctl/internal/tracker"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	for _, t := range cfg.ChangeTypes {
		domain.RegisterChangeType(t)
	}
	idFormat := domain.IDFormat{Separator: cfg.IDSeparator, SeqWidth: cfg.IDWidth}

	sectionTemplate, err := template.LoadFile(cfg.TemplatePath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	changeRepo := repository.NewSQLiteChangeRepo(database)
	docRepo := repository.NewSQLiteDocumentRepo(database)
	checkRepo := repository.NewSQLiteChecklistRepo(database)
	considerRepo := repository.NewSQLiteConsiderationRepo(database)
	refRepo := repository.NewSQLiteExternalRefRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Without a configured tracker, sync commands run against the
	// in-memory stub and nothing leaves the machine.
	var trackerClient tracker.Client = tracker.NewFake()
	if cfg.Tracker.BaseURL != "" {
		trackerClient = tracker.NewHTTPClient(tracker.Config{
			BaseURL: cfg.Tracker.BaseURL,
			Token:   cfg.Tracker.Token,
			Timeout: cfg.Tracker.Timeout,
		})
	}

	// Optional structured use-case log.
	var observers []service.UseCaseObserver
	if cfg.LogTarget != "" {
		w, err := logWriter(cfg.LogTarget)
		if err != nil {
			return err
		}
		observers = append(observers, service.NewLogUseCaseObserver(w))
	}

	checklistSvc := service.NewChecklistService(checkRepo, docRepo, observers...)

	app := &cli.App{
		Allocator:      service.NewAllocatorService(uow, sectionTemplate, idFormat, observers...),
		Changes:        service.NewChangeService(changeRepo),
		Documents:      service.NewDocumentService(docRepo, sectionTemplate, uow, observers...),
		Checklist:      checklistSvc,
		Considerations: service.NewConsiderationService(considerRepo, docRepo, uow, observers...),
		Gate:           service.NewGateService(docRepo, considerRepo, checklistSvc, uow, observers...),
		Resolver:       service.NewResolverService(refRepo, docRepo, considerRepo, trackerClient, observers...),
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}

func logWriter(target string) (*os.File, error) {
	if target == "stderr" {
		return os.Stderr, nil
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
