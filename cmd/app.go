package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"attendlog/api"
	"attendlog/attendance"
	"attendlog/config"
	"attendlog/internal/logging"
	"attendlog/report"
	"attendlog/session"
	"attendlog/storage"
)

const userAgent = "attendlog/1.0"

// app bundles what most commands need: validated config, logger, session
// store and an unauthenticated API client.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *storage.SQLiteStore
	client *api.HTTPClient
}

func openApp() (*app, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	dbPath, err := config.ExpandPath(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	store, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.ClientConfig{
		BaseURL:   cfg.API.URL,
		UserAgent: userAgent,
		Timeout:   cfg.API.Timeout,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: store, client: client}, nil
}

func (a *app) Close() {
	_ = a.logger.Sync()
	_ = a.store.Close()
}

// session restores the stored session and returns a client carrying its token.
func (a *app) session() (*session.Session, *api.HTTPClient, error) {
	sess, err := session.Load(a.store)
	if err != nil {
		return nil, nil, err
	}
	return sess, a.client.WithToken(sess.AccessToken), nil
}

// requireRole restores the session and checks its role before any request.
func (a *app) requireRole(roles ...string) (*session.Session, *api.HTTPClient, error) {
	sess, client, err := a.session()
	if err != nil {
		return nil, nil, err
	}
	if err := sess.RequireRole(roles...); err != nil {
		return nil, nil, err
	}
	return sess, client, nil
}

func (a *app) reportService(client *api.HTTPClient) *report.Service {
	return report.NewService(client, a.cfg.Location, a.cfg.Report.MaxConcurrency, a.logger)
}

func parseIDFlag(name, value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid --%s value %q: expected a positive number", name, value)
	}
	return id, nil
}

func optionalID(value int64) *int64 {
	if value <= 0 {
		return nil
	}
	return &value
}

func readLine(r io.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func findOutlet(outlets []attendance.Outlet, id int64) (attendance.Outlet, bool) {
	for _, outlet := range outlets {
		if outlet.ID == id {
			return outlet, true
		}
	}
	return attendance.Outlet{}, false
}
