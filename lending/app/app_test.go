package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/lending/config"
	"github.com/Astemirdum/lending-service/lending/internal/delivery"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository/inmem"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	teacherID = uuid.MustParse("8f9f2c1e-2f0e-4a57-9b36-0c3f5a1d0001")
	studentID = uuid.MustParse("8f9f2c1e-2f0e-4a57-9b36-0c3f5a1d0002")
	bookID    = uuid.MustParse("8f9f2c1e-2f0e-4a57-9b36-0c3f5a1d0003")
)

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
staff:
  - id: `+teacherID.String()+`
    name: Ms. Smith
    email: smith@school.test
students:
  - id: `+studentID.String()+`
    name: Tom
books:
  - id: `+bookID.String()+`
    title: Book A
    total: 1
`), 0o600))
	return path
}

func TestSeedStore(t *testing.T) {
	t.Parallel()
	store := inmem.New()
	require.NoError(t, seedStore(writeSeed(t), store))

	b, ok := store.Book(bookID)
	require.True(t, ok)
	require.Equal(t, "Book A", b.Title)
	require.Equal(t, 1, b.TotalCount)
	require.Equal(t, 1, b.AvailableCount)

	require.Error(t, seedStore(filepath.Join(t.TempDir(), "missing.yaml"), inmem.New()))
}

func TestBuild_MemoryDrivers(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Store: config.StoreMemory,
		Seed:  writeSeed(t),
		Queue: config.Queue{
			Driver: config.QueueMemory,
			Size:   8,
		},
		Delivery: delivery.DefaultRetryPolicy(),
	}
	ctx := context.Background()
	c, err := build(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer c.close()

	loan, err := c.loans.Checkout(ctx, model.CheckoutRequest{
		StudentID: studentID,
		BookID:    bookID,
		IssuerID:  teacherID,
		ReturnDue: model.Date{Time: time.Now().Add(72 * time.Hour)},
	})
	require.NoError(t, err)
	require.Equal(t, 0, loan.Book.AvailableCount)
	require.Equal(t, "Ms. Smith", loan.Issuer.Name)

	report, err := c.scanner.Scan(ctx)
	require.NoError(t, err)
	require.Equal(t, model.ScanReport{}, report)
}
