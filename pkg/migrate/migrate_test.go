package migrate

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/crm-backend/pkg/config"
	"github.com/angelmondragon/crm-backend/pkg/db"
	"github.com/angelmondragon/crm-backend/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestBundledMigrationsAreValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := ValidateFS(Embedded()); err != nil {
		t.Fatalf("validate embedded: %v", err)
	}

	data, err := fs.ReadFile(Embedded(), "20260101000000_create_crm_tables.sql")
	if err != nil {
		t.Fatalf("read embedded migration: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS customers",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email",
		"price numeric(12,2) NOT NULL",
		"REFERENCES customers(id) ON DELETE CASCADE",
		"REFERENCES products(id) ON DELETE RESTRICT",
		"PRIMARY KEY (order_id, product_id)",
		"DROP TABLE IF EXISTS order_products",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("missing expected statement %q", want)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Customer Notes!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_customer_notes.sql") {
		t.Fatalf("unexpected file name %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
	if _, err := CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatalf("expected empty-name error")
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("-- +goose Up"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatalf("expected filename error")
	}

	dir = t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20260101000000_x.sql"), []byte("-- +goose Up"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "goose Down") {
		t.Fatalf("expected missing down error, got %v", err)
	}

	dir = t.TempDir()
	body := "-- +goose Down\nDROP TABLE x;\n-- +goose Up\nCREATE TABLE x (id int);\n"
	if err := os.WriteFile(filepath.Join(dir, "20260101000000_x.sql"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "must come before") {
		t.Fatalf("expected ordering error, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	if got := slugify("  Add Customer-Notes v2 "); got != "add_customer_notes_v2" {
		t.Fatalf("unexpected slug %q", got)
	}
}

func TestMaybeRunDevAutoMigratesSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), db.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvDev},
		DB:           config.DBConfig{Driver: config.DriverSQLite},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	if err := MaybeRunDev(context.Background(), cfg, logg, db.Wrap(conn)); err != nil {
		t.Fatalf("MaybeRunDev: %v", err)
	}
	for _, table := range []string{"customers", "products", "orders", "order_products"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}

	cfg.App.Env = config.AppEnvProd
	if err := MaybeRunDev(context.Background(), cfg, logg, nil); err != nil {
		t.Fatalf("prod should be a no-op: %v", err)
	}
}
