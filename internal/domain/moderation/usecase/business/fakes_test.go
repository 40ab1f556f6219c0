package business

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/moderation-bot/config"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/consts"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/deps"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/dto"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/repository/memory"
)

const (
	channelID    = int64(-1001234567890)
	adminChatID  = int64(-4000)
	discussionID = int64(-1009)
	botUsername  = "topics_bot"
)

var errPlatform = errors.New("Forbidden: bot was blocked by the user")

// artifact is a message that appeared in some chat, sent or copied
type artifact struct {
	Key     entities.MessageKey
	Text    string
	Spans   []entities.Span
	Markup  *entities.Markup
	ReplyTo int
	// Copied is set for copies; Source and Caption describe them.
	Copied  bool
	Source  entities.MessageKey
	Caption *entities.Body
}

type edit struct {
	Kind   string
	Msg    entities.MessageKey
	Text   string
	Spans  []entities.Span
	Markup *entities.Markup
}

type ack struct {
	ID   string
	Text string
}

// fakeMessenger records every platform call
type fakeMessenger struct {
	mu sync.Mutex

	nextID    int
	artifacts []artifact
	edits     []edit
	acks      []ack

	membership    map[int64]entities.MembershipStatus
	membershipErr error
	approved      []int64
	declined      []int64
	unbanned      []int64
	inviteLink    string
	username      string

	failSend func(chatID int64, text string) error
	failCopy func(chatID int64) error
	failEdit error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		nextID:     100,
		membership: make(map[int64]entities.MembershipStatus),
		inviteLink: "https://t.me/+join",
		username:   botUsername,
	}
}

func (m *fakeMessenger) SendText(_ context.Context, chatID int64, text string, opts deps.SendOptions) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSend != nil {
		if err := m.failSend(chatID, text); err != nil {
			return 0, err
		}
	}
	m.nextID++
	m.artifacts = append(m.artifacts, artifact{
		Key:     entities.MessageKey{ChatID: chatID, MessageID: m.nextID},
		Text:    text,
		Spans:   opts.Spans,
		Markup:  opts.Markup,
		ReplyTo: opts.ReplyTo,
	})
	return m.nextID, nil
}

func (m *fakeMessenger) CopyMessage(_ context.Context, chatID int64, src entities.MessageKey, opts deps.CopyOptions) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCopy != nil {
		if err := m.failCopy(chatID); err != nil {
			return 0, err
		}
	}
	m.nextID++
	m.artifacts = append(m.artifacts, artifact{
		Key:     entities.MessageKey{ChatID: chatID, MessageID: m.nextID},
		Markup:  opts.Markup,
		Copied:  true,
		Source:  src,
		Caption: opts.Caption,
	})
	return m.nextID, nil
}

func (m *fakeMessenger) EditText(_ context.Context, msg entities.MessageKey, text string, spans []entities.Span, markup *entities.Markup) error {
	return m.recordEdit(edit{Kind: "text", Msg: msg, Text: text, Spans: spans, Markup: markup})
}

func (m *fakeMessenger) EditCaption(_ context.Context, msg entities.MessageKey, caption string, spans []entities.Span, markup *entities.Markup) error {
	return m.recordEdit(edit{Kind: "caption", Msg: msg, Text: caption, Spans: spans, Markup: markup})
}

func (m *fakeMessenger) EditActions(_ context.Context, msg entities.MessageKey, markup *entities.Markup) error {
	return m.recordEdit(edit{Kind: "actions", Msg: msg, Markup: markup})
}

func (m *fakeMessenger) recordEdit(e edit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failEdit != nil && e.Kind != "actions" {
		return m.failEdit
	}
	m.edits = append(m.edits, e)
	return nil
}

func (m *fakeMessenger) LookupMembership(_ context.Context, _ int64, userID int64) (entities.MembershipStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.membershipErr != nil {
		return "", m.membershipErr
	}
	status, ok := m.membership[userID]
	if !ok {
		return entities.MembershipLeft, nil
	}
	return status, nil
}

func (m *fakeMessenger) ApproveJoinRequest(_ context.Context, _ int64, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approved = append(m.approved, userID)
	return nil
}

func (m *fakeMessenger) DeclineJoinRequest(_ context.Context, _ int64, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.declined = append(m.declined, userID)
	return nil
}

func (m *fakeMessenger) Unban(_ context.Context, _ int64, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unbanned = append(m.unbanned, userID)
	return nil
}

func (m *fakeMessenger) CreateJoinRequestLink(context.Context, int64, string) (string, error) {
	return m.inviteLink, nil
}

func (m *fakeMessenger) AcknowledgeAction(_ context.Context, actionID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acks = append(m.acks, ack{ID: actionID, Text: text})
	return nil
}

func (m *fakeMessenger) BotUsername() string {
	return m.username
}

// in returns the artifacts of chatID in arrival order
func (m *fakeMessenger) in(chatID int64) []artifact {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []artifact
	for _, a := range m.artifacts {
		if a.Key.ChatID == chatID {
			out = append(out, a)
		}
	}
	return out
}

// textsTo returns the texts sent to chatID
func (m *fakeMessenger) textsTo(chatID int64) []string {
	var out []string
	for _, a := range m.in(chatID) {
		if !a.Copied {
			out = append(out, a.Text)
		}
	}
	return out
}

// reviewCard returns the last admin-chat artifact carrying publish/reject actions
func (m *fakeMessenger) reviewCard(t *testing.T) artifact {
	t.Helper()

	arts := m.in(adminChatID)
	for i := len(arts) - 1; i >= 0; i-- {
		if hasAction(arts[i].Markup, consts.ActionPublish) {
			return arts[i]
		}
	}
	require.FailNow(t, "no review card in the admin chat")
	return artifact{}
}

func (m *fakeMessenger) lastAck() ack {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.acks) == 0 {
		return ack{}
	}
	return m.acks[len(m.acks)-1]
}

func (m *fakeMessenger) editsOf(kind string, msg entities.MessageKey) []edit {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []edit
	for _, e := range m.edits {
		if e.Kind == kind && e.Msg == msg {
			out = append(out, e)
		}
	}
	return out
}

func hasAction(markup *entities.Markup, actionType string) bool {
	if markup == nil {
		return false
	}
	for _, row := range markup.Inline {
		for _, b := range row {
			if p, err := dto.ParseActionPayload(b.Data); err == nil && p.Type == actionType {
				return true
			}
		}
	}
	return false
}

// fakeRecorder counts metric calls
type fakeRecorder struct {
	mu      sync.Mutex
	counts  map[string]int
	pending int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{counts: make(map[string]int)}
}

func (r *fakeRecorder) inc(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[name]++
}

func (r *fakeRecorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

func (r *fakeRecorder) DraftStarted() { r.inc("drafts_started") }
func (r *fakeRecorder) SubmissionCreated(c entities.Classification) { r.inc("submissions_" + string(c)) }
func (r *fakeRecorder) SubmissionPublished() { r.inc("published") }
func (r *fakeRecorder) SubmissionRejected() { r.inc("rejected") }
func (r *fakeRecorder) PublishConflict() { r.inc("conflicts") }
func (r *fakeRecorder) AnonymousReply(result string) { r.inc("anonymous_" + result) }
func (r *fakeRecorder) DiscussionLinked() { r.inc("links") }
func (r *fakeRecorder) CollaboratorError(operation string) { r.inc("error_" + operation) }
func (r *fakeRecorder) SetPendingReplies(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = n
}

// fakeEvents records published events
type fakeEvents struct {
	mu     sync.Mutex
	events []entities.ModerationEvent
}

func (e *fakeEvents) Publish(_ context.Context, event *entities.ModerationEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, *event)
	return nil
}

func (e *fakeEvents) Close() error { return nil }

func (e *fakeEvents) types() []entities.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []entities.EventType
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	uc        *UseCase
	messenger *fakeMessenger
	store     *memory.Store
	events    *fakeEvents
	metrics   *fakeRecorder
	nextMsg   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		messenger: newFakeMessenger(),
		store:     memory.NewStore(),
		events:    &fakeEvents{},
		metrics:   newFakeRecorder(),
		nextMsg:   1,
	}
	cfg := &config.ModerationConfig{
		ChannelID:         channelID,
		AdminChatID:       adminChatID,
		DiscussionChatID:  discussionID,
		AnonReplyTTL:      time.Hour,
		DiscussionLinkTTL: 24 * time.Hour,
		JanitorInterval:   time.Minute,
	}
	f.uc = NewUseCase(f.messenger, f.store, f.events, f.metrics, cfg, zerolog.Nop())
	return f
}

func author(id int64) entities.Author {
	return entities.Author{ID: id, Username: fmt.Sprintf("user%d", id), FirstName: "Ann"}
}

func (f *fixture) msgID() int {
	f.nextMsg++
	return f.nextMsg
}

func (f *fixture) private(userID int64, content entities.ContentItem) *dto.IncomingMessage {
	return &dto.IncomingMessage{
		Key:      entities.MessageKey{ChatID: userID, MessageID: f.msgID()},
		ChatType: dto.ChatPrivate,
		From:     author(userID),
		Content:  content,
	}
}

func (f *fixture) sendText(t *testing.T, userID int64, text string) {
	t.Helper()
	content := entities.ContentItem{Kind: entities.KindText, Text: text}
	require.NoError(t, f.uc.HandleIncomingMessage(context.Background(), f.private(userID, content)))
}

func (f *fixture) sendContent(t *testing.T, userID int64, content entities.ContentItem) {
	t.Helper()
	require.NoError(t, f.uc.HandleIncomingMessage(context.Background(), f.private(userID, content)))
}

func (f *fixture) command(t *testing.T, userID, chatID int64, name, args string) {
	t.Helper()
	chatType := dto.ChatSupergroup
	if chatID == userID {
		chatType = dto.ChatPrivate
	}
	msg := &dto.IncomingMessage{
		Key:         entities.MessageKey{ChatID: chatID, MessageID: f.msgID()},
		ChatType:    chatType,
		From:        author(userID),
		Content:     entities.ContentItem{Kind: entities.KindText, Text: "/" + name},
		Command:     name,
		CommandArgs: args,
	}
	require.NoError(t, f.uc.HandleIncomingMessage(context.Background(), msg))
}

func (f *fixture) adminMessage(adminID int64, replyTo entities.MessageKey, content entities.ContentItem) *dto.IncomingMessage {
	return &dto.IncomingMessage{
		Key:      entities.MessageKey{ChatID: adminChatID, MessageID: f.msgID()},
		ChatType: dto.ChatSupergroup,
		From:     author(adminID),
		Content:  content,
		ReplyTo:  replyTo,
	}
}

func (f *fixture) press(userID int64, on entities.MessageKey, payload dto.ActionPayload) error {
	return f.uc.HandleIncomingAction(context.Background(), &dto.IncomingAction{
		ID:      "cb-" + payload.Type,
		From:    author(userID),
		Message: on,
		Data:    payload.Encode(),
	})
}

// draft takes a member through propose, the given items and done
func (f *fixture) draft(t *testing.T, userID int64, items ...entities.ContentItem) {
	t.Helper()

	f.messenger.membership[userID] = entities.MembershipMember
	f.sendText(t, userID, consts.ButtonPropose)
	for _, item := range items {
		f.sendContent(t, userID, item)
	}
	require.NoError(t, f.press(userID, entities.MessageKey{ChatID: userID, MessageID: 1}, dto.ActionPayload{Type: consts.ActionComposeDone}))
}

func (f *fixture) classify(t *testing.T, userID int64, classification entities.Classification) {
	t.Helper()
	payload := dto.ActionPayload{Type: consts.ActionChoose, Value: string(classification)}
	require.NoError(t, f.press(userID, entities.MessageKey{ChatID: userID, MessageID: 1}, payload))
}

func textItem(text string, spans ...entities.Span) entities.ContentItem {
	return entities.ContentItem{Kind: entities.KindText, Text: text, Spans: spans}
}

func mediaItem(kind entities.ContentKind, caption string, spans ...entities.Span) entities.ContentItem {
	return entities.ContentItem{Kind: kind, SupportsCaption: kind.SupportsCaption(), Text: caption, Spans: spans}
}
