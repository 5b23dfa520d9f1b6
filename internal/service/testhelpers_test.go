package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/pkg/database"
	"go.uber.org/zap"
)

// newTestDB opens an in-memory database with the full migrated schema.
// A single connection keeps the memory database alive for the test.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).RunMigrations())
	return db
}

type fakeFieldExtractor struct {
	summary *models.Summary
	err     error
	calls   int
}

func (f *fakeFieldExtractor) ExtractSummary(_ context.Context, _ string, _ *models.Invoice) (*models.Summary, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

type fakeTextExtractor struct {
	text string
	err  error
}

func (f *fakeTextExtractor) Extract(_ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeStore serves a fixed set of blobs by reference.
type fakeStore struct {
	files map[string][]byte
}

func (f *fakeStore) Upload(_ context.Context, userID, filename string, data []byte) (string, error) {
	if f.files == nil {
		f.files = map[string][]byte{}
	}
	ref := userID + "/" + filename
	f.files[ref] = data
	return ref, nil
}

func (f *fakeStore) Download(_ context.Context, pathOrURL string) ([]byte, error) {
	data, ok := f.files[pathOrURL]
	if !ok {
		return nil, errors.New("file not found: " + pathOrURL)
	}
	return data, nil
}

type fakeTransport struct {
	err   error
	sent  int
	to    string
	sub   string
	body  string
	msgID string
}

func (f *fakeTransport) Send(to, subject, htmlBody string) (string, error) {
	f.sent++
	f.to = to
	f.sub = subject
	f.body = htmlBody
	if f.err != nil {
		return "", f.err
	}
	if f.msgID == "" {
		f.msgID = "<test-message@localhost>"
	}
	return f.msgID, nil
}
