// This file is a helper for running tests against a real Postgres with testcontainers.
// It is used by the integration tests and by the standalone cmd/testcontainers executable.
// Expects environment variables to be loaded from .env files, when present.
//

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/localnerve/persondb/data"
	"github.com/localnerve/persondb/internal/config"
	"github.com/localnerve/persondb/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultImage    = "postgres:16-alpine"
	defaultUser     = "persondb"
	defaultPassword = "persondb"
	defaultDatabase = "persondb"
)

// PostgresContainer is a started, seeded Postgres and the config that reaches it
type PostgresContainer struct {
	Container testcontainers.Container
	Config    *config.Config
}

// Terminate stops the container. t may be nil outside of tests.
func (pc *PostgresContainer) Terminate(t *testing.T) {
	if pc.Container == nil {
		return
	}
	if err := pc.Container.Terminate(context.Background()); err != nil {
		logMessage(t, "Failed to terminate Postgres: %v", err)
	}
}

// StartPostgres starts a Postgres container and loads the person seed into it.
// t may be nil, in which case failures exit the process.
func StartPostgres(t *testing.T) (*PostgresContainer, error) {
	ctx := context.Background()
	pc := &PostgresContainer{}

	user := envOrDefault("PGUSER", defaultUser)
	password := envOrDefault("PGPASSWORD", defaultPassword)
	dbName := envOrDefault("PGDATABASE", defaultDatabase)

	tcpDbPort, err := nat.NewPort("tcp", "5432")
	if err != nil {
		exitWithError(t, err, "Failed to create DB port")
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        envOrDefault("POSTGRES_IMAGE", defaultImage),
			ExposedPorts: []string{string(tcpDbPort)},
			Env: map[string]string{
				"POSTGRES_USER":     user,
				"POSTGRES_PASSWORD": password,
				"POSTGRES_DB":       dbName,
			},
			// the init server logs this once before restarting for real
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		exitWithError(t, err, "Failed to start Postgres")
	}
	pc.Container = dbContainer

	dbHost, err := dbContainer.Host(ctx)
	if err != nil {
		pc.Terminate(t)
		exitWithError(t, err, "Failed to get Postgres host")
	}
	dbPort, err := dbContainer.MappedPort(ctx, tcpDbPort)
	if err != nil {
		pc.Terminate(t)
		exitWithError(t, err, "Failed to get Postgres port")
	}

	pc.Config = &config.Config{
		Port:             "3000",
		CORSAllowOrigins: "*",
		DBType:           "postgres",
		DBHost:           dbHost,
		DBPort:           dbPort.Port(),
		DBDatabase:       dbName,
		DBUser:           user,
		DBPassword:       password,
	}

	if err := performPostgresDBInit(pc.Config); err != nil {
		pc.Terminate(t)
		exitWithError(t, err, "Failed to initialize database")
	}

	logMessage(t, "Postgres testcontainer started successfully")
	return pc, nil
}

func performPostgresDBInit(cfg *config.Config) error {
	gormDB, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(gormDB)

	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("postgres not ready after 30 seconds: %w", err)
	}

	return executeSQL(db, data.InitdbPostgresPerson)
}

func executeSQL(db *sql.DB, sql string) error {
	lines := strings.Split(sql, "\n")

	var ncls []string
	for _, l := range lines {
		ncls = append(ncls, excludeComment(l))
	}

	l := strings.Join(ncls, "\n")
	queries := strings.Split(l, ";")
	queries = queries[:len(queries)-1]

	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), q)
		}
	}
	return nil
}

// excludeComment strips a trailing -- comment that is not inside quotes
func excludeComment(line string) string {
	d := "\""
	s := "'"
	c := "--"

	var nc string
	ck := line
	mx := len(line) + 1

	for {
		if len(ck) == 0 {
			return nc
		}

		di := strings.Index(ck, d)
		si := strings.Index(ck, s)
		ci := strings.Index(ck, c)

		if di < 0 {
			di = mx
		}
		if si < 0 {
			si = mx
		}
		if ci < 0 {
			ci = mx
		}

		var quote string
		if di < si && di < ci {
			nc += ck[:di+1]
			ck = ck[di+1:]
			quote = d
		} else if si < di && si < ci {
			nc += ck[:si+1]
			ck = ck[si+1:]
			quote = s
		} else if ci < di && ci < si {
			return nc + ck[:ci]
		} else {
			return nc + ck
		}

		ei := strings.Index(ck, quote)
		if ei < 0 {
			return nc + ck
		}
		nc += ck[:ei+1]
		ck = ck[ei+1:]
	}
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
