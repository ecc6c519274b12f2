package services

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/localnerve/persondb/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	addresses []string
	err       error
	panics    bool
}

func (r fakeResolver) LookupHost(_ context.Context, _ string) ([]string, error) {
	if r.panics {
		panic("resolver exploded")
	}
	return r.addresses, r.err
}

type blockingDialer struct{}

func (blockingDialer) DialContext(ctx context.Context, _, _ string) (net.Conn, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestDiagnostics(t *testing.T, port string, resolver Resolver) (*Diagnostics, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()

	db, mock := setupMockDB(t)
	var logs bytes.Buffer

	cfg := &config.Config{DBHost: "db.example.internal", DBPort: port}
	d := NewDiagnostics(cfg, db, log.New(&logs, "", 0))
	d.Resolver = resolver

	return d, mock, &logs
}

func listeningPort(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return port
}

func expectLivenessQuery(mock sqlmock.Sqlmock, now time.Time) {
	mock.ExpectQuery(`SELECT NOW\(\) AS now`).
		WillReturnRows(sqlmock.NewRows([]string{"now"}).AddRow(now))
}

func stepStatuses(report *DiagnosticsReport) map[string]string {
	statuses := make(map[string]string)
	for _, step := range report.Steps {
		statuses[step.Name] = step.Status
	}
	return statuses
}

func TestDiagnosticsAllStepsSucceed(t *testing.T) {
	port := listeningPort(t)
	d, mock, logs := newTestDiagnostics(t, port, fakeResolver{addresses: []string{"127.0.0.1", "::1"}})
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	expectLivenessQuery(mock, now)

	report := d.Run(context.Background())

	require.Len(t, report.Steps, 3)
	assert.Equal(t, []string{"dns", "tcp", "database"}, []string{report.Steps[0].Name, report.Steps[1].Name, report.Steps[2].Name})
	assert.True(t, report.Healthy())
	assert.Equal(t, "127.0.0.1", report.Address)
	assert.True(t, report.Reachable)
	assert.Equal(t, now, report.DatabaseTime)
	assert.NotEmpty(t, report.RunID)
	assert.NoError(t, mock.ExpectationsWereMet())

	out := logs.String()
	assert.Contains(t, out, "[diagnostics "+report.RunID+"] Running diagnostics...")
	assert.Contains(t, out, "DNS lookup for db.example.internal: 127.0.0.1")
	assert.Contains(t, out, "TCP connection to 127.0.0.1:"+port+" successful")
	assert.Contains(t, out, "Successfully connected to the database.")
	assert.Contains(t, out, "Database query successful. Current timestamp:")
}

func TestDiagnosticsDNSFailureSkipsTCPOnly(t *testing.T) {
	d, mock, logs := newTestDiagnostics(t, "5432", fakeResolver{err: errors.New("no such host")})
	expectLivenessQuery(mock, time.Now())

	report := d.Run(context.Background())

	assert.Equal(t, map[string]string{
		"dns":      StepFailed,
		"tcp":      StepSkipped,
		"database": StepOK,
	}, stepStatuses(report))
	assert.False(t, report.Healthy())
	assert.Empty(t, report.Address)
	assert.False(t, report.Reachable)
	assert.Contains(t, logs.String(), "DNS lookup failed for db.example.internal: no such host")
	assert.NotContains(t, logs.String(), "TCP connection")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiagnosticsEmptyLookupResult(t *testing.T) {
	d, mock, _ := newTestDiagnostics(t, "5432", fakeResolver{})
	expectLivenessQuery(mock, time.Now())

	report := d.Run(context.Background())

	assert.Equal(t, StepFailed, stepStatuses(report)["dns"])
	assert.Equal(t, StepSkipped, stepStatuses(report)["tcp"])
	assert.Equal(t, StepOK, stepStatuses(report)["database"])
}

func TestDiagnosticsTCPTimeoutIsBounded(t *testing.T) {
	d, mock, logs := newTestDiagnostics(t, "5432", fakeResolver{addresses: []string{"10.255.255.1"}})
	d.Dialer = blockingDialer{}
	d.TCPTimeout = 100 * time.Millisecond
	expectLivenessQuery(mock, time.Now())

	start := time.Now()
	report := d.Run(context.Background())

	assert.Less(t, time.Since(start), 3*time.Second)
	assert.Equal(t, StepFailed, stepStatuses(report)["tcp"])
	assert.Equal(t, StepOK, stepStatuses(report)["database"])
	assert.Contains(t, logs.String(), "TCP connection to 10.255.255.1:5432 timed out")
	assert.Contains(t, logs.String(), "TCP connection test failed:")
}

func TestDiagnosticsDatabaseFailure(t *testing.T) {
	port := listeningPort(t)
	d, mock, logs := newTestDiagnostics(t, port, fakeResolver{addresses: []string{"127.0.0.1"}})
	mock.ExpectQuery(`SELECT NOW\(\) AS now`).WillReturnError(errors.New("password authentication failed"))

	report := d.Run(context.Background())

	statuses := stepStatuses(report)
	assert.Equal(t, StepOK, statuses["dns"])
	assert.Equal(t, StepOK, statuses["tcp"])
	assert.Equal(t, StepFailed, statuses["database"])
	assert.Nil(t, report.DatabaseTime)
	assert.Contains(t, report.Steps[2].Error, "password authentication failed")
	assert.Contains(t, logs.String(), "Error connecting to database: password authentication failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiagnosticsStepPanicIsContained(t *testing.T) {
	d, mock, logs := newTestDiagnostics(t, "5432", fakeResolver{panics: true})
	expectLivenessQuery(mock, time.Now())

	report := d.Run(context.Background())

	require.Len(t, report.Steps, 3)
	assert.Equal(t, StepFailed, report.Steps[0].Status)
	assert.Equal(t, "panic: resolver exploded", report.Steps[0].Error)
	assert.Equal(t, StepOK, report.Steps[2].Status)
	assert.Contains(t, logs.String(), "Diagnostics step dns panicked")
}

func TestDiagnosticsRunIDsDiffer(t *testing.T) {
	d, mock, _ := newTestDiagnostics(t, "5432", fakeResolver{err: errors.New("nope")})
	expectLivenessQuery(mock, time.Now())
	expectLivenessQuery(mock, time.Now())

	first := d.Run(context.Background())
	second := d.Run(context.Background())

	assert.NotEqual(t, first.RunID, second.RunID)
}
