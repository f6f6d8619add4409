package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/consts"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type messageFixture struct {
	userRepo     *fakeUserRepo
	convRepo     *fakeConvRepo
	messageRepo  *fakeMessageRepo
	reactionRepo *fakeReactionRepo
	publisher    *fakePublisher
	svc          MessageService
	alice        uint64
	bob          uint64
	convID       uint64
}

func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()
	userRepo := newFakeUserRepo()
	alice := userRepo.addUser("Alice", "s_alice")
	bob := userRepo.addUser("Bob", "s_bob")
	convRepo := newFakeConvRepo()
	convSvc := NewConversationService(convRepo, userRepo)
	convID, err := convSvc.GetOrCreateDirect(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("fixture conversation: %v", err)
	}

	messageRepo := newFakeMessageRepo()
	reactionRepo := newFakeReactionRepo()
	publisher := newFakePublisher()
	svc := NewMessageService(convRepo, userRepo, messageRepo, reactionRepo, &fakeSigner{}, publisher)
	t.Cleanup(svc.Close)

	return &messageFixture{
		userRepo:     userRepo,
		convRepo:     convRepo,
		messageRepo:  messageRepo,
		reactionRepo: reactionRepo,
		publisher:    publisher,
		svc:          svc,
		alice:        alice.ID,
		bob:          bob.ID,
		convID:       convID,
	}
}

func (f *messageFixture) waitPublishes(t *testing.T, n int) []publishCall {
	t.Helper()
	calls := make([]publishCall, 0, n)
	for i := 0; i < n; i++ {
		select {
		case call := <-f.publisher.calls:
			calls = append(calls, call)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for publish %d of %d", i+1, n)
		}
	}
	return calls
}

func TestSendPersistsStampsAndFansOut(t *testing.T) {
	f := newMessageFixture(t)

	res, err := f.svc.Send(context.Background(), f.alice, &dto.SendMessageReq{
		ConversationID: f.convID,
		Body:           "  hello there  ",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.Body != "hello there" {
		t.Fatalf("body = %q, want trimmed", res.Body)
	}
	if res.ID == "" {
		t.Fatal("message id missing")
	}

	conv, _ := f.convRepo.GetConversation(context.Background(), f.convID)
	if conv.LastMessageSnippet != "hello there" {
		t.Fatalf("snippet = %q", conv.LastMessageSnippet)
	}
	bobMember, _ := f.convRepo.GetMembership(context.Background(), f.convID, f.bob)
	if bobMember.UnreadCount != 1 {
		t.Fatalf("bob unread = %d, want 1", bobMember.UnreadCount)
	}
	aliceMember, _ := f.convRepo.GetMembership(context.Background(), f.convID, f.alice)
	if aliceMember.UnreadCount != 0 {
		t.Fatal("sender unread must not bump")
	}

	calls := f.waitPublishes(t, 2)
	channels := map[string]bool{}
	for _, c := range calls {
		channels[c.channel] = true
		if !strings.Contains(string(c.payload), "NEW_MESSAGE") {
			t.Fatalf("payload missing event type: %s", c.payload)
		}
	}
	if !channels["im:user:1"] || !channels["im:user:2"] {
		t.Fatalf("fanout channels = %v", channels)
	}
}

func TestSendRejectsBlankBodyAndOutsiders(t *testing.T) {
	f := newMessageFixture(t)

	_, err := f.svc.Send(context.Background(), f.alice, &dto.SendMessageReq{ConversationID: f.convID, Body: "   "})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}

	outsider := f.userRepo.addUser("X", "s_x")
	_, err = f.svc.Send(context.Background(), outsider.ID, &dto.SendMessageReq{ConversationID: f.convID, Body: "hi"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestSendFileValidation(t *testing.T) {
	f := newMessageFixture(t)

	base := dto.FileMetaDTO{StorageKey: "chat/x", FileName: "a.pdf", FileSize: 100, MimeType: "application/pdf"}

	oversize := base
	oversize.FileSize = consts.MaxUploadBytes + 1
	if _, err := f.svc.SendFile(context.Background(), f.alice, &dto.SendFileReq{ConversationID: f.convID, File: oversize}); !errors.Is(err, ErrFileSizeInvalid) {
		t.Fatalf("err = %v, want ErrFileSizeInvalid", err)
	}

	executable := base
	executable.MimeType = "application/x-msdownload"
	if _, err := f.svc.SendFile(context.Background(), f.alice, &dto.SendFileReq{ConversationID: f.convID, File: executable}); !errors.Is(err, ErrFileNotSupported) {
		t.Fatalf("err = %v, want ErrFileNotSupported", err)
	}

	res, err := f.svc.SendFile(context.Background(), f.alice, &dto.SendFileReq{ConversationID: f.convID, File: base})
	if err != nil {
		t.Fatalf("SendFile: %v", err)
	}
	if res.MsgType != consts.MsgTypeFile || res.FileName != "a.pdf" {
		t.Fatalf("unexpected dto: %+v", res)
	}
	conv, _ := f.convRepo.GetConversation(context.Background(), f.convID)
	if conv.LastMessageSnippet != consts.FileSnippetPrefix+"a.pdf" {
		t.Fatalf("snippet = %q", conv.LastMessageSnippet)
	}
	f.waitPublishes(t, 2)
}

func TestSendVoiceValidation(t *testing.T) {
	f := newMessageFixture(t)

	notAudio := dto.VoiceMetaDTO{StorageKey: "chat/v", DurationMs: 1000, MimeType: "video/mp4"}
	if _, err := f.svc.SendVoice(context.Background(), f.alice, &dto.SendVoiceReq{ConversationID: f.convID, Voice: notAudio}); !errors.Is(err, ErrFileNotSupported) {
		t.Fatalf("err = %v, want ErrFileNotSupported", err)
	}

	tooLong := dto.VoiceMetaDTO{StorageKey: "chat/v", DurationMs: consts.MaxVoiceDurationMs + 1, MimeType: "audio/webm"}
	if _, err := f.svc.SendVoice(context.Background(), f.alice, &dto.SendVoiceReq{ConversationID: f.convID, Voice: tooLong}); !errors.Is(err, ErrVoiceDuration) {
		t.Fatalf("err = %v, want ErrVoiceDuration", err)
	}

	ok := dto.VoiceMetaDTO{StorageKey: "chat/v", DurationMs: 2500, MimeType: "audio/webm"}
	res, err := f.svc.SendVoice(context.Background(), f.alice, &dto.SendVoiceReq{ConversationID: f.convID, Voice: ok})
	if err != nil {
		t.Fatalf("SendVoice: %v", err)
	}
	if res.MsgType != consts.MsgTypeVoice || res.DurationMs != 2500 {
		t.Fatalf("unexpected dto: %+v", res)
	}
	conv, _ := f.convRepo.GetConversation(context.Background(), f.convID)
	if conv.LastMessageSnippet != consts.VoiceSnippet {
		t.Fatalf("snippet = %q", conv.LastMessageSnippet)
	}
	f.waitPublishes(t, 2)
}

func TestListReturnsAscendingWithReactions(t *testing.T) {
	f := newMessageFixture(t)

	first, err := f.svc.Send(context.Background(), f.alice, &dto.SendMessageReq{ConversationID: f.convID, Body: "first"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	// 保证两条消息时间戳可区分
	f.messageRepo.msgs[first.ID].CreatedAt = time.Now().Add(-time.Minute)
	second, err := f.svc.Send(context.Background(), f.bob, &dto.SendMessageReq{ConversationID: f.convID, Body: "second"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	f.waitPublishes(t, 4)

	reactionSvc := NewReactionService(f.convRepo, f.messageRepo, f.reactionRepo)
	if _, err = reactionSvc.Toggle(context.Background(), f.alice, second.ID, "👍"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err = reactionSvc.Toggle(context.Background(), f.bob, second.ID, "👍"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err = reactionSvc.Toggle(context.Background(), f.bob, second.ID, "❤️"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	msgs, err := f.svc.List(context.Background(), f.alice, f.convID, 50)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].ID != first.ID || msgs[1].ID != second.ID {
		t.Fatal("messages not in ascending order")
	}
	if msgs[0].Sender == nil || msgs[0].Sender.Name != "Alice" {
		t.Fatal("sender not resolved")
	}

	counts := msgs[1].ReactionCounts
	if len(counts) != 2 {
		t.Fatalf("reaction kinds = %d, want 2", len(counts))
	}
	if counts[0].Emoji != "👍" || counts[0].Count != 2 {
		t.Fatalf("top reaction = %+v, want 👍 x2", counts[0])
	}
	if len(msgs[1].MyReactions) != 1 || msgs[1].MyReactions[0] != "👍" {
		t.Fatalf("my reactions = %v", msgs[1].MyReactions)
	}
}

func TestListPresignsAttachmentsButNotTombstones(t *testing.T) {
	f := newMessageFixture(t)

	file := dto.FileMetaDTO{StorageKey: "chat/doc", FileName: "a.pdf", FileSize: 10, MimeType: "application/pdf"}
	sent, err := f.svc.SendFile(context.Background(), f.alice, &dto.SendFileReq{ConversationID: f.convID, File: file})
	if err != nil {
		t.Fatalf("SendFile: %v", err)
	}
	f.waitPublishes(t, 2)

	msgs, err := f.svc.List(context.Background(), f.bob, f.convID, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if msgs[0].FileURL != "https://storage.test/get/chat/doc" {
		t.Fatalf("file url = %q", msgs[0].FileURL)
	}

	if err = f.svc.SoftDelete(context.Background(), f.alice, sent.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	msgs, err = f.svc.List(context.Background(), f.bob, f.convID, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if msgs[0].FileURL != "" || msgs[0].DeletedAt == nil {
		t.Fatal("tombstone must not carry a download url")
	}
}

func TestSoftDeleteRules(t *testing.T) {
	f := newMessageFixture(t)

	sent, err := f.svc.Send(context.Background(), f.alice, &dto.SendMessageReq{ConversationID: f.convID, Body: "oops"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	f.waitPublishes(t, 2)

	if err = f.svc.SoftDelete(context.Background(), f.bob, sent.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden for non-sender", err)
	}
	if err = f.svc.SoftDelete(context.Background(), f.alice, "missing"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("err = %v, want ErrMessageNotFound", err)
	}

	if err = f.svc.SoftDelete(context.Background(), f.alice, sent.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	// 恰好是最后一条，预览被改写
	conv, _ := f.convRepo.GetConversation(context.Background(), f.convID)
	if conv.LastMessageSnippet != consts.DeletedSnippet {
		t.Fatalf("snippet = %q, want rewritten", conv.LastMessageSnippet)
	}

	// 重复撤回静默成功
	if err = f.svc.SoftDelete(context.Background(), f.alice, sent.ID); err != nil {
		t.Fatalf("repeat SoftDelete: %v", err)
	}
}

func TestSoftDeleteKeepsSnippetWhenNewerMessageExists(t *testing.T) {
	f := newMessageFixture(t)

	old, err := f.svc.Send(context.Background(), f.alice, &dto.SendMessageReq{ConversationID: f.convID, Body: "old"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	f.messageRepo.msgs[old.ID].CreatedAt = time.Now().Add(-time.Minute)
	if _, err = f.svc.Send(context.Background(), f.bob, &dto.SendMessageReq{ConversationID: f.convID, Body: "newer"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	f.waitPublishes(t, 4)

	if err = f.svc.SoftDelete(context.Background(), f.alice, old.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	conv, _ := f.convRepo.GetConversation(context.Background(), f.convID)
	if conv.LastMessageSnippet != "newer" {
		t.Fatalf("snippet = %q, must stay untouched", conv.LastMessageSnippet)
	}
}

func TestGenerateUploadURL(t *testing.T) {
	f := newMessageFixture(t)

	ticket, err := f.svc.GenerateUploadURL(context.Background(), f.alice, &dto.UploadURLReq{ConversationID: f.convID, FileName: "notes.pdf"})
	if err != nil {
		t.Fatalf("GenerateUploadURL: %v", err)
	}
	if !strings.HasPrefix(ticket.StorageKey, "chat/") || !strings.HasSuffix(ticket.StorageKey, ".pdf") {
		t.Fatalf("storage key = %q", ticket.StorageKey)
	}
	if ticket.UploadURL != "https://storage.test/upload/"+ticket.StorageKey {
		t.Fatalf("upload url = %q", ticket.UploadURL)
	}

	outsider := f.userRepo.addUser("X", "s_x")
	if _, err = f.svc.GenerateUploadURL(context.Background(), outsider.ID, &dto.UploadURLReq{ConversationID: f.convID, FileName: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestTruncateSnippet(t *testing.T) {
	long := strings.Repeat("字", consts.SnippetMaxLen+10)
	got := truncateSnippet(long)
	if len([]rune(got)) != consts.SnippetMaxLen {
		t.Fatalf("rune len = %d, want %d", len([]rune(got)), consts.SnippetMaxLen)
	}
	if truncateSnippet("short") != "short" {
		t.Fatal("short snippet must pass through")
	}
}

func TestMimeTypeMatchingIgnoresCase(t *testing.T) {
	f := newMessageFixture(t)

	for _, mt := range []string{"IMAGE/PNG", "Application/PDF"} {
		file := dto.FileMetaDTO{StorageKey: "chat/x", FileName: "a", FileSize: 100, MimeType: mt}
		if _, err := f.svc.SendFile(context.Background(), f.alice, &dto.SendFileReq{ConversationID: f.convID, File: file}); err != nil {
			t.Fatalf("SendFile(%q): %v", mt, err)
		}
		f.waitPublishes(t, 2)
	}

	// 大小写归一不能放行白名单外的类型
	blocked := dto.FileMetaDTO{StorageKey: "chat/x", FileName: "a.exe", FileSize: 100, MimeType: "APPLICATION/X-MSDOWNLOAD"}
	if _, err := f.svc.SendFile(context.Background(), f.alice, &dto.SendFileReq{ConversationID: f.convID, File: blocked}); !errors.Is(err, ErrFileNotSupported) {
		t.Fatalf("err = %v, want ErrFileNotSupported", err)
	}

	voice := dto.VoiceMetaDTO{StorageKey: "chat/v", DurationMs: 1500, MimeType: "Audio/webm"}
	if _, err := f.svc.SendVoice(context.Background(), f.alice, &dto.SendVoiceReq{ConversationID: f.convID, Voice: voice}); err != nil {
		t.Fatalf("SendVoice: %v", err)
	}
	f.waitPublishes(t, 2)
}

func TestClosePersistsPendingRetries(t *testing.T) {
	userRepo := newFakeUserRepo()
	alice := userRepo.addUser("Alice", "s_alice")
	bob := userRepo.addUser("Bob", "s_bob")
	convRepo := newFakeConvRepo()
	convSvc := NewConversationService(convRepo, userRepo)
	convID, err := convSvc.GetOrCreateDirect(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("fixture conversation: %v", err)
	}

	messageRepo := newFakeMessageRepo()
	messageRepo.failSaves = 1
	svc := NewMessageService(convRepo, userRepo, messageRepo, newFakeReactionRepo(), &fakeSigner{}, newFakePublisher())

	// 首次落库失败进入补偿队列，停机前必须落库
	if _, err := svc.Send(context.Background(), alice.ID, &dto.SendMessageReq{ConversationID: convID, Body: "ship it"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	svc.Close()

	messageRepo.mu.Lock()
	defer messageRepo.mu.Unlock()
	if len(messageRepo.msgs) != 1 {
		t.Fatalf("persisted messages = %d, want 1", len(messageRepo.msgs))
	}
	for _, m := range messageRepo.msgs {
		if m.Body != "ship it" {
			t.Fatalf("body = %q", m.Body)
		}
	}
}
