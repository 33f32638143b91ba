package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/stockroom/pkg/config"
	"github.com/angelmondragon/stockroom/pkg/db"
	"github.com/angelmondragon/stockroom/pkg/db/models"
	"github.com/angelmondragon/stockroom/pkg/enums"
	"github.com/angelmondragon/stockroom/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	client, err := db.New(context.Background(), config.DBConfig{Driver: config.DBDriverSQLite, DSN: dsn, MaxOpenConns: 1}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.DB().AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return client
}

func newTestLogger(t *testing.T, client *db.Client, mode string) (*Logger, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewAuthMetrics(reg)
	l, err := NewLogger(Params{
		DB:      client,
		Config:  config.AuditConfig{Mode: mode},
		Metrics: m,
		Now:     func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return l, reg
}

func auditFailures(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == "stockroom_audit_write_failures_total" && len(mf.GetMetric()) == 1 {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func events(t *testing.T, client *db.Client) []models.AuditEvent {
	t.Helper()
	var out []models.AuditEvent
	if err := client.DB().Order("id").Find(&out).Error; err != nil {
		t.Fatalf("list events: %v", err)
	}
	return out
}

func countItems(t *testing.T, client *db.Client) int64 {
	t.Helper()
	var n int64
	if err := client.DB().Model(&models.InventoryItem{}).Count(&n).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	return n
}

func insertItem(tx *gorm.DB) error {
	return tx.Create(&models.InventoryItem{Name: "widget"}).Error
}

func TestRecordAppendsEvent(t *testing.T) {
	client := newTestClient(t)
	l, _ := newTestLogger(t, client, config.AuditModeBestEffort)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	l.Record(context.Background(), MsgRegistered("alice"), at)
	l.Record(context.Background(), MsgInvalidCredentials, time.Time{})

	got := events(t, client)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Event != "Registration of a new user `alice`" || !got[0].Timestamp.Equal(at) {
		t.Fatalf("unexpected first event %+v", got[0])
	}
	if !got[1].Timestamp.Equal(fixedNow) {
		t.Fatalf("zero timestamp should default to now, got %v", got[1].Timestamp)
	}
}

func TestRecordSwallowsStoreFailure(t *testing.T) {
	client := newTestClient(t)
	l, reg := newTestLogger(t, client, config.AuditModeBestEffort)
	if err := client.DB().Migrator().DropTable(&models.AuditEvent{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	l.Record(context.Background(), MsgInvalidToken, fixedNow)

	if got := auditFailures(t, reg); got != 1 {
		t.Fatalf("expected one audit failure, got %f", got)
	}
}

func TestWithinBestEffortKeepsMutationWhenAuditFails(t *testing.T) {
	client := newTestClient(t)
	l, reg := newTestLogger(t, client, config.AuditModeBestEffort)
	if err := client.DB().Migrator().DropTable(&models.AuditEvent{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	if err := l.Within(context.Background(), MsgProductAdded("tina"), fixedNow, insertItem); err != nil {
		t.Fatalf("best effort must not fail: %v", err)
	}
	if n := countItems(t, client); n != 1 {
		t.Fatalf("expected mutation to persist, got %d items", n)
	}
	if got := auditFailures(t, reg); got != 1 {
		t.Fatalf("expected one audit failure, got %f", got)
	}
}

func TestWithinStrictAbortsMutationWhenAuditFails(t *testing.T) {
	client := newTestClient(t)
	l, _ := newTestLogger(t, client, config.AuditModeStrict)
	if err := client.DB().Migrator().DropTable(&models.AuditEvent{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	err := l.Within(context.Background(), MsgProductAdded("tina"), fixedNow, insertItem)
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected WriteError, got %v", err)
	}
	if n := countItems(t, client); n != 0 {
		t.Fatalf("expected rollback, got %d items", n)
	}
}

func TestWithinWritesEventAfterMutation(t *testing.T) {
	for _, mode := range []string{config.AuditModeBestEffort, config.AuditModeStrict} {
		t.Run(mode, func(t *testing.T) {
			client := newTestClient(t)
			l, _ := newTestLogger(t, client, mode)

			if err := l.Within(context.Background(), MsgProductAdded("tina"), fixedNow, insertItem); err != nil {
				t.Fatalf("within: %v", err)
			}
			got := events(t, client)
			if len(got) != 1 || got[0].Event != "User `tina` added a new product" {
				t.Fatalf("unexpected events %+v", got)
			}
			if n := countItems(t, client); n != 1 {
				t.Fatalf("expected 1 item, got %d", n)
			}
		})
	}
}

func TestWithinSkipsEventWhenMutationFails(t *testing.T) {
	for _, mode := range []string{config.AuditModeBestEffort, config.AuditModeStrict} {
		t.Run(mode, func(t *testing.T) {
			client := newTestClient(t)
			l, _ := newTestLogger(t, client, mode)

			boom := errors.New("boom")
			err := l.Within(context.Background(), MsgProductBought("bob"), fixedNow, func(*gorm.DB) error { return boom })
			if !errors.Is(err, boom) {
				t.Fatalf("expected mutation error, got %v", err)
			}
			if got := events(t, client); len(got) != 0 {
				t.Fatalf("expected no events, got %+v", got)
			}
		})
	}
}

func TestMessages(t *testing.T) {
	cases := map[string]string{
		MsgWrongRole(enums.RoleBuyer, "bob", enums.RoleTrader):  "Buyer `bob` attempting to access trader`s API",
		MsgWrongRole(enums.RoleTrader, "tina", enums.RoleBuyer): "Trader `tina` attempting to access buyer`s API",
		MsgDuplicateLogin("alice"):                              "Attempt to register an existing login `alice`",
		MsgTokenIssued("alice"):                                 "Get new token for user `alice`",
		MsgProductBought("bob"):                                 "User `bob` bought a product",
		MsgUnknownUser("ghost"):                                 "[3] Attempt to use invalid authorization data: ghost",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("got %q want %q", got, want)
		}
	}
}

func TestNewLoggerRequiresDB(t *testing.T) {
	if _, err := NewLogger(Params{}); err == nil {
		t.Fatal("expected error without db")
	}
}
