package database

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGormSQLiteMemory(t *testing.T) {
	var buf bytes.Buffer
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 10, LogLevel: "silent", LogWriter: &buf})
	require.NoError(t, err)
	defer Close(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, db.Exec("CREATE TABLE t (id INTEGER)").Error)
	require.NoError(t, db.Exec("INSERT INTO t VALUES (1)").Error)

	var n int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM t").Scan(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestNewGormUnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))
}

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{"driver form untouched", "root:pw@tcp(db:3306)/app", "", "", "root:pw@tcp(db:3306)/app"},
		{
			"url with jdbc params",
			"jdbc:mysql://root:pw@localhost:3306/app?useSSL=false&serverTimezone=UTC&useUnicode=true",
			"", "",
			"root:pw@tcp(localhost:3306)/app?charset=utf8mb4&loc=UTC&parseTime=true&tls=false",
		},
		{
			"overrides win",
			"mysql://a:b@h:1/d?charset=latin1",
			"svc", "secret",
			"svc:secret@tcp(h:1)/d?charset=latin1&parseTime=true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(h:1)/d", maskDSN("root:pw@tcp(h:1)/d"))
	assert.Equal(t, "file:users.db", maskDSN("file:users.db"))
}
