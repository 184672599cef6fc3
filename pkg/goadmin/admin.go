package goadmin

import (
	"context"
	"errors"
	"fmt"

	"github.com/ettle/strcase"

	backofficepkg "github.com/recliq/go-backoffice/pkg/backoffice"
)

// MenuBuilder ensures backoffice entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures backoffice link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Parent   string
	Position int
}

// Config wires the backoffice service + feature flags into an admin shell.
type Config struct {
	EnableBackoffice bool
	MenuCode         string
	MenuBuilder      MenuBuilder
	Service          *backofficepkg.Service
	DefaultMenuItem  MenuItem
	// MenuViewer decides which tables get a menu entry.
	MenuViewer backofficepkg.ViewerContext
}

var categoryIcons = map[string]string{
	"finance":    "credit-card",
	"risk":       "shield",
	"growth":     "users",
	"operations": "truck",
	"audit":      "clipboard",
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed backoffice menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableBackoffice && cfg.Service == nil {
		return nil, errors.New("goadmin: backoffice service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Backoffice"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "admin.backoffice"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "table"
	}
	if cfg.MenuViewer.UserID == "" {
		cfg.MenuViewer = backofficepkg.ViewerContext{UserID: "system", Roles: []string{"admin"}}
	}
	return &Admin{cfg: cfg}, nil
}

// Backoffice exposes the configured service when enabled.
func (a *Admin) Backoffice() *backofficepkg.Service {
	if !a.cfg.EnableBackoffice {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap seeds the backoffice entry and one child entry per table.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableBackoffice || a.cfg.MenuBuilder == nil {
		return nil
	}
	if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, a.cfg.DefaultMenuItem); err != nil {
		return fmt.Errorf("goadmin: seed %s: %w", a.cfg.DefaultMenuItem.Route, err)
	}
	for _, item := range a.TableMenuItems(ctx) {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return fmt.Errorf("goadmin: seed %s: %w", item.Route, err)
		}
	}
	return nil
}

// TableMenuItems lists the table entries Bootstrap seeds.
func (a *Admin) TableMenuItems(ctx context.Context) []MenuItem {
	if a.cfg.Service == nil {
		return nil
	}
	tables := a.cfg.Service.Tables(ctx, a.cfg.MenuViewer)
	items := make([]MenuItem, 0, len(tables))
	for i, desc := range tables {
		icon := categoryIcons[desc.Category]
		if icon == "" {
			icon = a.cfg.DefaultMenuItem.Icon
		}
		items = append(items, MenuItem{
			Label:    desc.Name,
			Route:    a.cfg.DefaultMenuItem.Route + ".tables." + strcase.ToSnake(desc.Code),
			Icon:     icon,
			Parent:   a.cfg.DefaultMenuItem.Route,
			Position: i + 1,
		})
	}
	return items
}
