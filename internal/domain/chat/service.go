package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/janhq/support-chat-api/internal/domain/conversation"
	"github.com/janhq/support-chat-api/internal/domain/llm"
	"github.com/janhq/support-chat-api/internal/domain/room"
	"github.com/janhq/support-chat-api/internal/infrastructure/metrics"
	"github.com/janhq/support-chat-api/internal/infrastructure/observability"
	"github.com/janhq/support-chat-api/internal/utils/platformerrors"
)

// Transport names the adapter a submission arrived through.
type Transport string

const (
	TransportHTTP      Transport = "http"
	TransportWebSocket Transport = "websocket"
)

// Locker serializes work per conversation. The returned unlock is safe to call once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Broadcaster delivers an event to every member of a room.
type Broadcaster interface {
	Broadcast(roomID, event string, payload any)
}

// HistoryLoader returns prior turns, oldest first.
type HistoryLoader interface {
	Load(ctx context.Context, conversationID string, max int, excludeID string) ([]llm.ChatMessage, error)
}

// Completer produces the assistant reply. It never fails; failures surface as fallback replies.
type Completer interface {
	Complete(ctx context.Context, history []llm.ChatMessage, userMessage string) llm.Reply
}

// SubmitInput is one inbound user message.
type SubmitInput struct {
	Content        string
	ConversationID string
	Transport      Transport
}

// SubmitResult carries the resolved conversation and both persisted messages.
type SubmitResult struct {
	ConversationID   string
	UserMessage      *conversation.Message
	AssistantMessage *conversation.Message
	Reply            llm.Reply
}

// Messages returns the persisted pair in creation order.
func (r *SubmitResult) Messages() []*conversation.Message {
	return []*conversation.Message{r.UserMessage, r.AssistantMessage}
}

// Options tunes the pipeline.
type Options struct {
	HistoryLimit int
	TypingDelay  time.Duration
}

// Service is the message ingestion pipeline shared by every transport.
type Service struct {
	repo        conversation.Repository
	history     HistoryLoader
	completer   Completer
	locker      Locker
	broadcaster Broadcaster
	opts        Options
	log         zerolog.Logger
}

// NewService creates the ingestion pipeline.
func NewService(
	repo conversation.Repository,
	history HistoryLoader,
	completer Completer,
	locker Locker,
	broadcaster Broadcaster,
	opts Options,
	log zerolog.Logger,
) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = llm.DefaultHistoryLimit
	}
	return &Service{
		repo:        repo,
		history:     history,
		completer:   completer,
		locker:      locker,
		broadcaster: broadcaster,
		opts:        opts,
		log:         log.With().Str("component", "chat-service").Logger(),
	}
}

// Submit runs one message through validation, persistence, completion and broadcast.
// Errors before the user message is stored leave no rows behind. Once it is stored the
// pipeline ignores caller cancellation and always attempts to store a reply.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	transport := in.Transport
	if transport == "" {
		transport = TransportHTTP
	}

	ctx, span := observability.StartIngestSpan(ctx, string(transport), in.ConversationID)
	defer span.End()

	content, err := conversation.ValidateContent(ctx, in.Content)
	if err != nil {
		return nil, s.reject(span, err, transport)
	}
	conversationID, err := conversation.ValidateID(ctx, in.ConversationID)
	if err != nil {
		return nil, s.reject(span, err, transport)
	}

	// A caller-supplied id is locked before it is resolved so two first messages
	// for the same id cannot both try to create it.
	var unlock func()
	if conversationID != "" {
		if unlock, err = s.lock(ctx, conversationID); err != nil {
			observability.RecordError(span, err)
			return nil, err
		}
		defer unlock()
	}

	conversationID, err = s.resolveConversation(ctx, conversationID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("chat.conversation_id", conversationID))

	if unlock == nil {
		if unlock, err = s.lock(ctx, conversationID); err != nil {
			observability.RecordError(span, err)
			return nil, err
		}
		defer unlock()
	}

	userMsg, err := s.repo.CreateMessage(ctx, conversationID, content, conversation.SenderUser)
	if err != nil {
		observability.RecordError(span, err)
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store user message")
	}
	metrics.RecordMessage(string(conversation.SenderUser), string(transport))

	ctx = context.WithoutCancel(ctx)
	realtime := transport == TransportWebSocket

	s.broadcaster.Broadcast(conversationID, room.EventNewMessage, room.NewMessagePayload(userMsg))
	if realtime {
		s.broadcaster.Broadcast(conversationID, room.EventTyping, room.TypingPayload{IsTyping: true})
	}

	reply := s.generateReply(ctx, conversationID, userMsg)

	if realtime {
		if s.opts.TypingDelay > 0 {
			time.Sleep(s.opts.TypingDelay)
		}
		s.broadcaster.Broadcast(conversationID, room.EventTyping, room.TypingPayload{IsTyping: false})
	}

	assistantMsg, err := s.repo.CreateMessage(ctx, conversationID, reply.Text, conversation.SenderAssistant)
	if err != nil {
		observability.RecordError(span, err)
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store assistant message")
	}
	metrics.RecordMessage(string(conversation.SenderAssistant), string(transport))

	s.broadcaster.Broadcast(conversationID, room.EventNewMessage, room.NewMessagePayload(assistantMsg))

	s.log.Info().
		Str("conversation_id", conversationID).
		Str("transport", string(transport)).
		Str("trace_id", observability.GetTraceID(ctx)).
		Bool("fallback", reply.Fallback).
		Msg("message processed")

	return &SubmitResult{
		ConversationID:   conversationID,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Reply:            reply,
	}, nil
}

// GetConversation returns a conversation with its messages oldest-first.
func (s *Service) GetConversation(ctx context.Context, id string) (*conversation.Conversation, error) {
	id, err := conversation.ValidateID(ctx, id)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, conversation.InvalidIDError(ctx)
	}
	return s.repo.FindConversationByID(ctx, id)
}

func (s *Service) resolveConversation(ctx context.Context, id string) (string, error) {
	ctx, span := observability.StartStepSpan(ctx, "resolve_conversation")
	defer span.End()

	if id != "" {
		exists, err := s.repo.ConversationExists(ctx, id)
		if err != nil {
			observability.RecordError(span, err)
			return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to look up conversation")
		}
		if exists {
			return id, nil
		}
	}

	conv, err := s.repo.CreateConversation(ctx, id)
	if err != nil {
		// Another process created it between the existence check and the insert.
		if id != "" && platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
			return id, nil
		}
		observability.RecordError(span, err)
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create conversation")
	}
	s.log.Debug().Str("conversation_id", conv.ID).Msg("conversation created")
	return conv.ID, nil
}

func (s *Service) generateReply(ctx context.Context, conversationID string, userMsg *conversation.Message) llm.Reply {
	ctx, span := observability.StartStepSpan(ctx, "generate_reply",
		attribute.String("chat.conversation_id", conversationID),
	)
	defer span.End()

	history, err := s.history.Load(ctx, conversationID, s.opts.HistoryLimit, userMsg.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to load history, continuing without it")
		history = nil
	}
	span.SetAttributes(attribute.Int("chat.history_length", len(history)))

	reply := s.completer.Complete(ctx, history, userMsg.Content)
	span.SetAttributes(
		attribute.Bool("chat.fallback", reply.Fallback),
		attribute.String("chat.fallback_reason", string(reply.Reason)),
	)
	return reply
}

func (s *Service) lock(ctx context.Context, conversationID string) (func(), error) {
	unlock, err := s.locker.Lock(ctx, conversationID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTimeout,
				"request cancelled while waiting for conversation", err, "chat-lock-cancelled")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to acquire conversation lock", err, "chat-lock-failed")
	}
	return unlock, nil
}

func (s *Service) reject(span trace.Span, err error, transport Transport) error {
	field := ""
	if pe := platformerrors.GetPlatformError(err); pe != nil {
		field = pe.Field
	}
	span.SetAttributes(attribute.String("chat.rejected_field", field))
	metrics.RecordRejection(field, string(transport))
	return err
}
