package commands_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/jam-build-rentals/internal/autosave"
	"github.com/localnerve/jam-build-rentals/internal/commands"
	"github.com/localnerve/jam-build-rentals/internal/database"
	"github.com/localnerve/jam-build-rentals/internal/logging"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/localnerve/jam-build-rentals/internal/services"
	"github.com/localnerve/jam-build-rentals/internal/testhelpers"
	"github.com/localnerve/jam-build-rentals/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func opener(db *gorm.DB) commands.Opener {
	return func() (*commands.Env, func(), error) {
		return &commands.Env{DB: db, Log: logging.Discard()}, func() {}, nil
	}
}

func run(t *testing.T, open commands.Opener, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCmd(open)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	db := testhelpers.NewDB(t)

	out, err := run(t, opener(db), "", "migrate")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("migrated %d tables\n", len(database.Models())), out)
}

func TestOpenerFailure(t *testing.T) {
	failing := func() (*commands.Env, func(), error) {
		return nil, nil, fmt.Errorf("failed to connect to database: refused")
	}
	_, err := run(t, failing, "", "role", "get", "alice")
	assert.EqualError(t, err, "failed to connect to database: refused")
}

func TestRole(t *testing.T) {
	open := opener(testhelpers.NewDB(t))

	out, err := run(t, open, "", "role", "get", "alice")
	require.NoError(t, err)
	assert.Equal(t, "tenant\n", out)

	out, err = run(t, open, "", "role", "set", "alice", "landlord")
	require.NoError(t, err)
	assert.Equal(t, "alice is now landlord\n", out)

	out, err = run(t, open, "", "role", "get", "alice")
	require.NoError(t, err)
	assert.Equal(t, "landlord\n", out)

	_, err = run(t, open, "", "role", "set", "alice", "owner")
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = run(t, open, "", "role", "set", "alice")
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	db := testhelpers.NewDB(t)
	open := opener(db)

	_, err := run(t, open, "", "seed")
	assert.Error(t, err, "owner is required")

	_, err = run(t, open, "", "seed", "--owner", "carol")
	assert.ErrorIs(t, err, types.ErrForbidden)

	testhelpers.SetRole(t, db, "carol", models.RoleLandlord)

	out, err := run(t, open, "", "seed", "--owner", "carol")
	require.NoError(t, err)
	assert.Equal(t, "seeded 4 properties\n", out)

	out, err = run(t, open, "", "seed", "--owner", "carol")
	require.NoError(t, err)
	assert.Equal(t, "seeded 0 properties\n", out)

	var owned int64
	require.NoError(t, db.Model(&models.Property{}).Where("owner_id = ?", "carol").Count(&owned).Error)
	assert.EqualValues(t, 4, owned)
}

func TestSeedFromFile(t *testing.T) {
	db := testhelpers.NewDB(t)
	testhelpers.SetRole(t, db, "carol", models.RoleLandlord)

	file := filepath.Join(t.TempDir(), "props.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"title":"Loft","address":"1 Mill St","city":"Hull","propertyType":"flat","baseRent":"700",
		 "units":[{"name":"Loft","rent":"700"}]}
	]`), 0o600))

	out, err := run(t, opener(db), "", "seed", "--owner", "carol", "--file", file)
	require.NoError(t, err)
	assert.Equal(t, "seeded 1 properties\n", out)

	_, err = run(t, opener(db), "", "seed", "--owner", "carol", "--file", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read seed file")
}

func TestApplicationSave(t *testing.T) {
	db := testhelpers.NewDB(t)
	auth := testhelpers.NewFakeAuth()
	auth.AddSession("alice-session", services.Identity{ID: "alice", Email: "alice@example.com"})
	property := testhelpers.CreateProperty(t, db, "landlord", "Leeds")

	app := testhelpers.NewApp(db, auth)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })
	url := "http://" + ln.Addr().String()

	form := fmt.Sprintf(`{"propertyId":%q,"moveInDate":"2026-12-01","totalRent":"950"}`, property.ID)

	out, err := run(t, nil, form, "application", "save", "--url", url, "--session", "alice-session")
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	assert.Equal(t, string(models.StatusDraft), fields[1])

	out, err = run(t, nil, form, "application", "save", "--url", url, "--session", "alice-session",
		"--id", fields[0], "--submit")
	require.NoError(t, err)
	assert.Equal(t, fields[0]+" "+string(models.StatusSubmitted)+"\n", out)

	var count int64
	require.NoError(t, db.Model(&models.Application{}).Where("user_id = ?", "alice").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err = run(t, nil, `{"propertyId":"x"}`, "application", "save", "--url", url, "--session", "alice-session")
	assert.ErrorIs(t, err, autosave.ErrIncomplete)

	_, err = run(t, nil, form, "application", "save", "--url", url)
	assert.Error(t, err, "anonymous saves are rejected")
}
