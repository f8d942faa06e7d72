package database

import (
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
)

func TestConfigDSN(t *testing.T) {
	c := &Config{Host: "db", Port: 5432, User: "app", Password: "secret", Database: "dialogue"}
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=dialogue sslmode=disable TimeZone=UTC", c.DSN())

	c.SSLMode = "require"
	assert.Contains(t, c.DSN(), "sslmode=require")

	c.Source = "postgres://app@db/dialogue"
	assert.Equal(t, "postgres://app@db/dialogue", c.DSN())
}

func TestNewDB_UnsupportedDriver(t *testing.T) {
	_, err := NewDB(&Config{Driver: "mysql"}, log.DefaultLogger)
	assert.EqualError(t, err, "unsupported database driver: mysql")
}
