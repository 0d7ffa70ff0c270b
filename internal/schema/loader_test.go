package schema

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fgardt/lldap/internal/codec"
	"github.com/fgardt/lldap/internal/domain"
	"github.com/fgardt/lldap/internal/domain/domaintest"
)

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Debug(msg string, fields map[string]any) { m.Called(msg, fields) }
func (m *mockLogger) Info(msg string, fields map[string]any)  { m.Called(msg, fields) }
func (m *mockLogger) Warn(msg string, fields map[string]any)  { m.Called(msg, fields) }
func (m *mockLogger) Error(msg string, fields map[string]any) { m.Called(msg, fields) }
func (m *mockLogger) Trace(msg string, fields map[string]any) { m.Called(msg, fields) }

// newMockLogger accepts any Debug and Trace call.
func newMockLogger() *mockLogger {
	logger := new(mockLogger)
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	logger.On("Trace", mock.Anything, mock.Anything).Maybe()
	return logger
}

func skippedRow(attribute string, row int) any {
	return mock.MatchedBy(func(f map[string]any) bool {
		return f["attribute"] == attribute && f["row"] == row
	})
}

func lenientConfig() LoaderConfig {
	cfg := NewLoaderConfig()
	cfg.Strict = false
	return cfg
}

var mixedSchemaRows = []SchemaRow{
	{Name: "nickname", Type: "String", IsVisible: true},
	{Name: "height", Type: "Float"},
	{Name: "uid_number", Type: "Integer"},
	{Name: "badge", Type: "jpegphoto"},
}

func TestLoader_LoadSchema(t *testing.T) {
	rows := []SchemaRow{
		{Name: "avatar", Type: "JpegPhoto", IsVisible: true, IsEditable: true, IsHardcoded: true},
		{Name: "uid_number", Type: "Integer", IsList: false},
		{Name: "aliases", Type: "String", IsList: true},
		{Name: "last_login", Type: "DateTime"},
	}

	s, err := NewLoader(NewLoaderConfig(), "user", nil).LoadSchema(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"avatar", "uid_number", "aliases", "last_login"}, s.Names())

	aliases, ok := s.Get("aliases")
	require.True(t, ok)
	assert.True(t, aliases.IsList)
	assert.Equal(t, domain.AttributeTypeString, aliases.Type)
}

func TestLoader_LoadSchema_Strict(t *testing.T) {
	logger := newMockLogger()
	logger.On("Error", "Operation failed", mock.MatchedBy(func(f map[string]any) bool {
		return f["operation"] == "load_schema" && f["entity"] == "user"
	})).Once()

	s, err := NewLoader(NewLoaderConfig(), "user", logger).LoadSchema(context.Background(), mixedSchemaRows)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, domain.ErrUnknownAttributeType)

	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 1, rowErr.Index)
	assert.Equal(t, "height", rowErr.Name)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "user", validationErr.Entity)
	assert.Equal(t, "height", validationErr.Field)
	assert.Equal(t, "Float", validationErr.Value)

	logger.AssertExpectations(t)
	logger.AssertNotCalled(t, "Warn", mock.Anything, mock.Anything)
}

func TestLoader_LoadSchema_Lenient(t *testing.T) {
	logger := newMockLogger()
	logger.On("Warn", "Skipping invalid row", mock.MatchedBy(func(f map[string]any) bool {
		return f["attribute"] == "height" && f["row"] == 1 && f["validation_kind"] == "unknown_attribute_type"
	})).Once()
	logger.On("Warn", "Skipping invalid row", skippedRow("badge", 3)).Once()
	logger.On("Info", "Loaded with skipped rows", mock.MatchedBy(func(f map[string]any) bool {
		return f["skipped"] == 2 && f["rows"] == 4
	})).Once()
	logger.On("Error", "Operation failed", mock.Anything).Once()

	s, err := NewLoader(lenientConfig(), "user", logger).LoadSchema(context.Background(), mixedSchemaRows)
	require.Error(t, err)
	require.NotNil(t, s)

	assert.Equal(t, []string{"nickname", "uid_number"}, s.Names())
	assert.ErrorIs(t, err, domain.ErrUnknownAttributeType)

	logger.AssertExpectations(t)
}

func TestLoader_LoadSchema_LenientDuplicate(t *testing.T) {
	rows := []SchemaRow{
		{Name: "nickname", Type: "String"},
		{Name: "Nickname", Type: "Integer"},
	}

	s, err := NewLoader(lenientConfig(), "group", nil).LoadSchema(context.Background(), rows)
	assert.ErrorIs(t, err, ErrDuplicateAttribute)
	require.NotNil(t, s)

	nickname, ok := s.Get("NICKNAME")
	require.True(t, ok)
	assert.Equal(t, domain.AttributeTypeString, nickname.Type)
}

func TestLoader_LoadSchema_MaxErrors(t *testing.T) {
	cfg := lenientConfig()
	cfg.MaxErrors = 1

	s, err := NewLoader(cfg, "user", nil).LoadSchema(context.Background(), mixedSchemaRows)
	assert.ErrorIs(t, err, ErrTooManyErrors)
	assert.ErrorIs(t, err, domain.ErrUnknownAttributeType)
	assert.Nil(t, s)
}

func TestLoader_LoadSchema_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(lenientConfig(), "user", nil).LoadSchema(ctx, mixedSchemaRows)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_LoadAttributes(t *testing.T) {
	s := DefaultUserSchema()
	photo := domaintest.JpegPhoto(t)

	rows := []AttributeRow{
		{Owner: "alice", Name: "first_name", Value: domain.Serialize("Alice")},
		{Owner: "alice", Name: "Avatar", Value: domain.Serialize(photo)},
		{Owner: "bob", Name: "last_name", Value: domain.Serialize("Builder")},
	}

	byOwner, err := NewLoader(NewLoaderConfig(), "user", nil).LoadAttributes(context.Background(), s, rows)
	require.NoError(t, err)

	require.Len(t, byOwner["alice"], 2)
	assert.Equal(t, domain.StringAttribute("first_name", "Alice"), byOwner["alice"][0])
	assert.Equal(t, domain.PhotoAttribute("avatar", photo), byOwner["alice"][1])
	assert.Equal(t, []domain.AttributeValue{domain.StringAttribute("last_name", "Builder")}, byOwner["bob"])
}

func TestLoader_LoadAttributes_BadRows(t *testing.T) {
	s := DefaultUserSchema()

	rows := []AttributeRow{
		{Owner: "alice", Name: "first_name", Value: domain.Serialize("Alice")},
		{Owner: "alice", Name: "first_name", Value: domain.Serialize(int64(3))},
		{Owner: "alice", Name: "avatar", Value: domain.Serialize([]byte("nope"))},
		{Owner: "alice", Name: "shoe_size", Value: domain.Serialize(int64(44))},
		{Owner: "bob", Name: "last_name", Value: domain.Serialize("Builder")},
	}

	t.Run("strict", func(t *testing.T) {
		byOwner, err := NewLoader(NewLoaderConfig(), "user", nil).LoadAttributes(context.Background(), s, rows)
		assert.Nil(t, byOwner)
		assert.ErrorIs(t, err, codec.ErrTypeMismatch)

		var rowErr *RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, 1, rowErr.Index)
	})

	t.Run("lenient", func(t *testing.T) {
		logger := newMockLogger()
		logger.On("Warn", "Skipping invalid row", skippedRow("first_name", 1)).Once()
		logger.On("Warn", "Skipping invalid row", skippedRow("avatar", 2)).Once()
		logger.On("Warn", "Skipping invalid row", skippedRow("shoe_size", 3)).Once()
		logger.On("Info", "Loaded with skipped rows", mock.Anything).Once()
		logger.On("Error", "Operation failed", mock.Anything).Once()

		byOwner, err := NewLoader(lenientConfig(), "user", logger).LoadAttributes(context.Background(), s, rows)
		require.Error(t, err)

		assert.ErrorIs(t, err, codec.ErrTypeMismatch)
		assert.ErrorIs(t, err, domain.ErrInvalidImage)
		assert.ErrorIs(t, err, ErrUnknownAttribute)

		assert.Len(t, byOwner["alice"], 1)
		assert.Len(t, byOwner["bob"], 1)
		logger.AssertExpectations(t)

		var validationErr *domain.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "user", validationErr.Entity)
		assert.Equal(t, "avatar", validationErr.Field)
	})
}

func TestLoader_FromSQLite(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
CREATE TABLE user_attribute_schema (
	attribute_name       VARCHAR(255) PRIMARY KEY,
	attribute_type       VARCHAR(64) NOT NULL,
	is_list              BOOLEAN NOT NULL,
	is_user_visible      BOOLEAN NOT NULL,
	is_user_editable     BOOLEAN NOT NULL,
	is_hardcoded         BOOLEAN NOT NULL
);
CREATE TABLE user_attributes (
	user_attribute_user_id VARCHAR(255) NOT NULL,
	user_attribute_name    VARCHAR(255) NOT NULL,
	user_attribute_value   BLOB NOT NULL
);`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO user_attribute_schema VALUES
		('first_name', 'String', 0, 1, 1, 1),
		('uid_number', 'Integer', 0, 1, 0, 0),
		('legacy', 'Text', 0, 0, 0, 0)`)
	require.NoError(t, err)

	for _, a := range []struct {
		owner domain.UserID
		value domain.AttributeValue
	}{
		{domain.NewUserID("alice"), domain.StringAttribute("first_name", "Alice")},
		{domain.NewUserID("alice"), domain.IntegerAttribute("uid_number", 1000)},
		{domain.NewUserID("bob"), domain.IntegerAttribute("uid_number", 1001)},
	} {
		_, err = db.Exec(`INSERT INTO user_attributes VALUES (?, ?, ?)`, a.owner, a.value.Name, a.value.Value)
		require.NoError(t, err)
	}

	schemaRows := queryRows(t, db, `SELECT * FROM user_attribute_schema ORDER BY rowid`, func(r *sql.Rows) SchemaRow {
		var row SchemaRow
		require.NoError(t, r.Scan(&row.Name, &row.Type, &row.IsList, &row.IsVisible, &row.IsEditable, &row.IsHardcoded))
		return row
	})
	attributeRows := queryRows(t, db, `SELECT * FROM user_attributes ORDER BY rowid`, func(r *sql.Rows) AttributeRow {
		var row AttributeRow
		require.NoError(t, r.Scan(&row.Owner, &row.Name, &row.Value))
		return row
	})

	loader := NewLoader(lenientConfig(), "user", nil)

	s, err := loader.LoadSchema(context.Background(), schemaRows)
	assert.ErrorIs(t, err, domain.ErrUnknownAttributeType)
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Len())

	byOwner, err := loader.LoadAttributes(context.Background(), s, attributeRows)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), domain.MustDecode[int64](byOwner["alice"][1].Value))
	assert.Equal(t, int64(1001), domain.MustDecode[int64](byOwner["bob"][0].Value))
}

func queryRows[T any](t *testing.T, db *sql.DB, query string, scan func(*sql.Rows) T) []T {
	t.Helper()

	rows, err := db.Query(query)
	require.NoError(t, err)
	defer rows.Close()

	var out []T
	for rows.Next() {
		out = append(out, scan(rows))
	}
	require.NoError(t, rows.Err())
	return out
}
