package app

import (
	"context"
	"strings"
	"time"

	"swipess_api/internal/domain"
)

// AssistantService runs dialog turns. One remote call may be in flight per
// dialog; the busy latch doubles as the "thinking" flag readers see.
type AssistantService struct {
	dialogs domain.DialogStore
	client  domain.AssistantClient
}

func NewAssistantService(dialogs domain.DialogStore, client domain.AssistantClient) *AssistantService {
	return &AssistantService{dialogs: dialogs, client: client}
}

// Send appends the user message, asks the orchestrator, and appends the
// reply. On an orchestrator failure the user message stays in the
// transcript and the error is surfaced; nothing is retried here.
func (s *AssistantService) Send(ctx context.Context, userID, dialogID, text string) ([]domain.DialogMessage, error) {
	txt := strings.TrimSpace(text)
	if txt == "" {
		return nil, &domain.ValidationError{Field: "text", Reason: "message is empty"}
	}
	key := dialogKey(userID, dialogID)

	ok, err := s.dialogs.AcquireBusy(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrBusy
	}
	defer func() { _ = s.dialogs.ReleaseBusy(ctx, key) }()

	if err := s.dialogs.AppendMessage(ctx, key, domain.DialogMessage{
		Role: domain.RoleUser, Text: txt, At: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	history, err := s.dialogs.Transcript(ctx, key)
	if err != nil {
		return nil, err
	}
	reply, err := s.client.Reply(ctx, key, history)
	if err != nil {
		return nil, err
	}
	if err := s.dialogs.AppendMessage(ctx, key, domain.DialogMessage{
		Role: domain.RoleAssistant, Text: reply, At: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	return s.dialogs.Transcript(ctx, key)
}

// Transcript returns the dialog so far and whether a turn is in flight.
func (s *AssistantService) Transcript(ctx context.Context, userID, dialogID string) ([]domain.DialogMessage, bool, error) {
	key := dialogKey(userID, dialogID)
	msgs, err := s.dialogs.Transcript(ctx, key)
	if err != nil {
		return nil, false, err
	}
	busy, err := s.dialogs.IsBusy(ctx, key)
	if err != nil {
		return msgs, false, err
	}
	return msgs, busy, nil
}

// dialogKey scopes a dialog to its owner so users cannot read each
// other's transcripts by guessing ids.
func dialogKey(userID, dialogID string) string {
	return userID + ":" + dialogID
}
