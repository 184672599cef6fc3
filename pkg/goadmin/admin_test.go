package goadmin_test

import (
	"context"
	"testing"

	core "github.com/recliq/go-backoffice/components/backoffice"
	backofficepkg "github.com/recliq/go-backoffice/pkg/backoffice"
	"github.com/recliq/go-backoffice/pkg/goadmin"
)

type stubMenuBuilder struct {
	items []goadmin.MenuItem
}

func (s *stubMenuBuilder) EnsureMenuItem(_ context.Context, _ string, item goadmin.MenuItem) error {
	s.items = append(s.items, item)
	return nil
}

func TestAdminBootstrapSeedsMenu(t *testing.T) {
	builder := &stubMenuBuilder{}
	service := backofficepkg.NewService(backofficepkg.Options{})
	admin, err := goadmin.New(goadmin.Config{
		EnableBackoffice: true,
		Service:          service,
		MenuBuilder:      builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != 9 {
		t.Fatalf("expected parent plus 8 tables, got %d", len(builder.items))
	}
	if builder.items[0].Route != "admin.backoffice" {
		t.Fatalf("expected parent entry first, got %#v", builder.items[0])
	}
	payments := builder.items[1]
	if payments.Route != "admin.backoffice.tables.payments" || payments.Parent != "admin.backoffice" || payments.Position != 1 {
		t.Fatalf("unexpected payments entry %#v", payments)
	}
	if admin.Backoffice() == nil {
		t.Fatalf("expected backoffice service")
	}
}

type denyFraud struct{}

func (denyFraud) CanViewTable(_ context.Context, _ core.ViewerContext, desc core.TableDescriptor) bool {
	return desc.Code != core.TableFraudFlags
}

func (denyFraud) CanPerformAction(context.Context, core.ViewerContext, core.TableDescriptor, core.ActionDescriptor) bool {
	return false
}

func TestTableMenuItemsRespectAuthorizer(t *testing.T) {
	service := backofficepkg.NewService(backofficepkg.Options{Authorizer: denyFraud{}})
	admin, err := goadmin.New(goadmin.Config{EnableBackoffice: true, Service: service})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	items := admin.TableMenuItems(context.Background())
	if len(items) != 7 {
		t.Fatalf("expected 7 visible tables, got %d", len(items))
	}
	for _, item := range items {
		if item.Route == "admin.backoffice.tables.fraud_flags" {
			t.Fatalf("fraud flags should be hidden")
		}
	}
}

func TestAdminDisabledSkipsBootstrap(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableBackoffice: false,
		MenuBuilder:      builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != 0 {
		t.Fatalf("expected 0 calls, got %d", len(builder.items))
	}
	if admin.Backoffice() != nil {
		t.Fatalf("expected nil backoffice when disabled")
	}
}

func TestAdminRequiresServiceWhenEnabled(t *testing.T) {
	if _, err := goadmin.New(goadmin.Config{EnableBackoffice: true}); err == nil {
		t.Fatalf("expected error without service")
	}
}
