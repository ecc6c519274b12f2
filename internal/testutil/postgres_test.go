package testutil

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/localnerve/persondb/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcludeComment(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"SELECT 1; -- trailing", "SELECT 1; "},
		{"-- whole line", ""},
		{"INSERT INTO person VALUES ('a--b');", "INSERT INTO person VALUES ('a--b');"},
		{`SELECT "odd--name" FROM t -- note`, `SELECT "odd--name" FROM t `},
		{"no comment here", "no comment here"},
		{"dangling 'quote -- here", "dangling 'quote -- here"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, excludeComment(tt.line), tt.line)
	}
}

func TestExecuteSQLSplitsStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id INT)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO a VALUES (1)")).WillReturnResult(sqlmock.NewResult(1, 1))

	err = executeSQL(db, "-- header\nCREATE TABLE a (id INT);\n\nINSERT INTO a VALUES (1); -- seed\n")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSQLReportsFailingStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("BROKEN").WillReturnError(assert.AnError)

	err = executeSQL(db, "BROKEN STATEMENT;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "when executing > BROKEN STATEMENT")
}

func TestPersonSeedStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS person").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO person").WillReturnResult(sqlmock.NewResult(0, data.PersonSeedRows))

	require.NoError(t, executeSQL(db, data.InitdbPostgresPerson))
	assert.NoError(t, mock.ExpectationsWereMet())
}
