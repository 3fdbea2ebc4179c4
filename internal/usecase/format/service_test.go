package format

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/domain"
)

// mockChat is a stub chat client.
type mockChat struct {
	reply string
	err   error
	calls int
	last  domain.ChatRequest
}

func (m *mockChat) Complete(_ context.Context, req domain.ChatRequest) (string, error) {
	m.calls++
	m.last = req
	return m.reply, m.err
}

func TestFormat_Applied(t *testing.T) {
	chat := &mockChat{reply: "In my last role, I led the migration (Situation)..."}
	svc := New(chat, zap.NewNop())

	got, outcome := svc.Format(context.Background(), "I migrated a service.", "tell me about a project")
	if got != chat.reply {
		t.Errorf("expected formatted answer, got %q", got)
	}
	if outcome.Status != domain.StageApplied {
		t.Errorf("expected applied, got %+v", outcome)
	}

	if !strings.Contains(chat.last.User, "Original Question: tell me about a project") {
		t.Errorf("prompt missing question: %q", chat.last.User)
	}
	if !strings.Contains(chat.last.User, "Current Response: I migrated a service.") {
		t.Errorf("prompt missing answer: %q", chat.last.User)
	}
	if chat.last.Temperature != 0.7 || chat.last.MaxTokens != 600 {
		t.Errorf("sampling params: temp=%f max=%d", chat.last.Temperature, chat.last.MaxTokens)
	}
}

func TestFormat_ProviderFailureFallsBack(t *testing.T) {
	chat := &mockChat{err: errors.New("overloaded")}
	svc := New(chat, zap.NewNop())

	got, outcome := svc.Format(context.Background(), "the raw answer", "q")
	if got != "the raw answer" {
		t.Errorf("fallback must return the unmodified answer, got %q", got)
	}
	if outcome.Status != domain.StageFellBack {
		t.Errorf("expected fell_back, got %+v", outcome)
	}
	if chat.calls != 1 {
		t.Errorf("expected a single attempt, got %d", chat.calls)
	}
}

func TestFormat_EmptyReplyFallsBack(t *testing.T) {
	chat := &mockChat{reply: ""}
	svc := New(chat, zap.NewNop())

	got, outcome := svc.Format(context.Background(), "the raw answer", "q")
	if got != "the raw answer" {
		t.Errorf("expected unmodified answer, got %q", got)
	}
	if outcome.Status != domain.StageFellBack {
		t.Errorf("expected fell_back, got %+v", outcome)
	}
}
