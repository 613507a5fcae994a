package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lu-zhengda/mailrules/internal/domain"
	"github.com/lu-zhengda/mailrules/internal/store/sqlite"
)

// fetchClient serves a canned message list and records mutations.
type fetchClient struct {
	messages []domain.Message
	fetchErr error
	marked   []string
}

func (f *fetchClient) Authenticate(ctx context.Context) error { return nil }
func (f *fetchClient) IsAuthenticated() bool                  { return true }

func (f *fetchClient) FetchRecent(ctx context.Context, max int) ([]domain.Message, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if max > 0 && max < len(f.messages) {
		return f.messages[:max], nil
	}
	return f.messages, nil
}

func (f *fetchClient) Move(ctx context.Context, msgID string, folder domain.Folder) error {
	return nil
}

func (f *fetchClient) MarkRead(ctx context.Context, msgID string, read bool) error {
	f.marked = append(f.marked, msgID)
	return nil
}

func newTestService(t *testing.T, client *fetchClient) (*TriageService, *sqlite.DB) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := sqlite.New(":memory:", logger)
	if err != nil {
		t.Fatalf("sqlite.New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTriageService(db, client, logger), db
}

func TestFetchAndStore(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	client := &fetchClient{messages: []domain.Message{
		{ID: "msg-1", Subject: "One", Sender: "a@example.com", ReceivedAt: now.Add(-time.Hour)},
		{ID: "msg-2", Subject: "Two", Sender: "b@example.com", ReceivedAt: now},
	}}
	svc, db := newTestService(t, client)
	ctx := context.Background()

	stored, err := svc.FetchAndStore(ctx, 25)
	if err != nil {
		t.Fatalf("FetchAndStore() error: %v", err)
	}
	if stored != 2 {
		t.Errorf("stored = %d, want 2", stored)
	}

	got, err := db.GetMessage(ctx, "msg-2")
	if err != nil {
		t.Fatalf("GetMessage() error: %v", err)
	}
	if got.Subject != "Two" {
		t.Errorf("Subject = %q, want Two", got.Subject)
	}
}

func TestFetchAndStore_FetchError(t *testing.T) {
	client := &fetchClient{fetchErr: errors.New("network down")}
	svc, _ := newTestService(t, client)

	if _, err := svc.FetchAndStore(context.Background(), 25); err == nil {
		t.Error("FetchAndStore() with failing fetch returned nil, want error")
	}
}

func TestProcessAll(t *testing.T) {
	client := &fetchClient{}
	svc, db := newTestService(t, client)
	ctx := context.Background()

	msg := domain.Message{
		ID:         "msg-1",
		Subject:    "Meeting Reminder",
		Sender:     "boss@example.com",
		ReceivedAt: time.Now().Add(-24 * time.Hour),
	}
	if err := db.UpsertMessage(ctx, &msg); err != nil {
		t.Fatalf("UpsertMessage() error: %v", err)
	}

	rule := &domain.Rule{
		Name:      "meetings",
		MatchMode: domain.MatchAll,
		Conditions: []domain.Condition{
			{Field: domain.FieldSubject, Operator: domain.OpContains, Value: "meeting"},
		},
		Actions: []domain.Action{{Kind: domain.ActionMarkRead}},
	}
	if err := db.CreateRule(ctx, rule); err != nil {
		t.Fatalf("CreateRule() error: %v", err)
	}

	results, err := svc.ProcessAll(ctx)
	if err != nil {
		t.Fatalf("ProcessAll() error: %v", err)
	}

	want := map[string][]string{"msg-1": {"Marked as read"}}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("ProcessAll() result mismatch (-want +got):\n%s", diff)
	}
	if len(client.marked) != 1 || client.marked[0] != "msg-1" {
		t.Errorf("client.marked = %v, want [msg-1]", client.marked)
	}
}

func TestProcessAll_NoRules(t *testing.T) {
	client := &fetchClient{}
	svc, db := newTestService(t, client)
	ctx := context.Background()

	msg := domain.Message{
		ID:         "msg-1",
		Subject:    "Anything",
		Sender:     "a@example.com",
		ReceivedAt: time.Now(),
	}
	if err := db.UpsertMessage(ctx, &msg); err != nil {
		t.Fatalf("UpsertMessage() error: %v", err)
	}

	results, err := svc.ProcessAll(ctx)
	if err != nil {
		t.Fatalf("ProcessAll() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want empty with no rules", results)
	}
}
