package database

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
)

func TestQueryLoggerSkipsMissingRows(t *testing.T) {
	var out bytes.Buffer
	db := OpenTest(t).Session(&gorm.Session{Logger: newGormLogger(log.New(&out, "", 0))})

	var user models.User
	err := db.Where("email = ?", "nobody@mamacare.test").Take(&user).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, out.String())

	var n int64
	err = db.Raw("SELECT count(*) FROM no_such_table").Scan(&n).Error
	require.Error(t, err)
	assert.Contains(t, out.String(), "no_such_table")
}

func TestPing(t *testing.T) {
	db := OpenTest(t)
	require.NoError(t, Ping(db))
}
