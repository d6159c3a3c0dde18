package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tokodash/internal/models"
	"tokodash/internal/repositories"
	logx "tokodash/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	logx.Silence()
	os.Exit(m.Run())
}

func TestHashPassword(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("hash-password", []string{"-password", "s3cret", "-cost", "4"}, &out))

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestHashPasswordRequiresPassword(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run("hash-password", nil, &out))
}

func TestSeed(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "seed.db")

	var out bytes.Buffer
	require.NoError(t, run("seed", []string{"-driver", "sqlite", "-dsn", dsn}, &out))
	assert.Contains(t, out.String(), "Seeded 2 corrections and 2 orders")

	db, err := repositories.OpenDatabase("sqlite", dsn)
	require.NoError(t, err)
	items, err := repositories.NewGORMPendingSource(db).LoadPending(context.Background())
	require.NoError(t, err)
	assert.Len(t, items.Orders, 2)
	assert.Len(t, items.Corrections, 2)
}

func TestUnknownCommand(t *testing.T) {
	assert.Error(t, run("add-user", nil, &bytes.Buffer{}))
}

func TestWatchDecisionsRequiresURL(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	assert.Error(t, run("watch-decisions", nil, &bytes.Buffer{}))
}

func TestDecisionPrinterAppliesEvents(t *testing.T) {
	db, err := repositories.OpenDatabase("sqlite", filepath.Join(t.TempDir(), "decisions.db"))
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	require.NoError(t, repositories.Seed(context.Background(), db, repositories.SamplePendingItems()))

	var out bytes.Buffer
	handle := decisionPrinter(&out, repositories.NewGORMDecisionRepository(db))
	require.NoError(t, handle(models.DecisionEvent{
		ID:        "e-1",
		Kind:      models.KindOrders,
		ItemID:    102,
		Decision:  models.DecisionApproved,
		DecidedBy: "admin",
		DecidedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}))
	assert.Equal(t, "2025-05-01 12:00:00 orders #102 approved by admin\n", out.String())

	var order models.Order
	require.NoError(t, db.First(&order, 102).Error)
	assert.Equal(t, models.OrderApproved, order.Status)
}

func TestDecisionPrinterWithoutDatabase(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, decisionPrinter(&out, nil)(models.DecisionEvent{Kind: models.KindComments, ItemID: 3, Decision: models.DecisionRejected}))
	assert.Contains(t, out.String(), "comments #3 rejected")
}
