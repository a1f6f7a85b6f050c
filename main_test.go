package main

import (
	"context"
	"os"
	"path/filepath"
	"sales_explorer/internal/config"
	"sales_explorer/internal/sales"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const seedCSV = "Transaction ID,Date,Customer ID,Customer Name,Phone Number,Gender,Age,Customer Region," +
	"Customer Type,Product ID,Product Name,Brand,Product Category,Quantity,Price per Unit,Discount Percentage," +
	"Total Amount,Final Amount,Payment Method,Order Status,Delivery Type,Store ID,Store Location,Salesperson ID," +
	"Employee Name,Tags\n" +
	`1,2021-09-26,CUST-9,Neha Yadav,9720639364,Female,21,South,Returning,PROD-8,Herbal Face Wash,` +
	`Himalaya,Beauty,3,300,10,900,810,UPI,Completed,Standard,ST-3,Mumbai,EMP-4,Harsh Agarwal,"organic,skincare"` + "\n" +
	`2,2021-09-27,CUST-3,Arjun Das,9812345670,Male,34,East,New,PROD-2,Denim Jacket,` +
	`Levis,Clothing,1,2500,0,2500,2500,Card,Completed,Express,ST-1,Kolkata,EMP-1,Ravi Sen,cotton` + "\n"

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(seedCSV), 0o600))
	return path
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	storage := sales.NewLocalStorage()
	path := writeSeed(t)

	require.NoError(t, seed(ctx, storage, path, zaptest.NewLogger(t)))
	n, err := storage.Count(ctx, sales.And{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A populated store is left alone.
	require.NoError(t, seed(ctx, storage, path, zaptest.NewLogger(t)))
	n, err = storage.Count(ctx, sales.And{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSeed_MissingFile(t *testing.T) {
	err := seed(context.Background(), sales.NewLocalStorage(), filepath.Join(t.TempDir(), "nope.csv"), zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "open seed file")
}

func TestOpenStorage_SQLite(t *testing.T) {
	ctx := context.Background()
	storage, closeStorage, err := openStorage(ctx, config.StoreConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "sales.db"),
	})
	require.NoError(t, err)
	defer closeStorage()

	require.NoError(t, seed(ctx, storage, writeSeed(t), zaptest.NewLogger(t)))
	n, err := storage.Count(ctx, sales.InSet{Field: sales.FieldTags, Values: []string{"skincare"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = newLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
