package service

import (
	"Ripple/internal/model"
	"Ripple/internal/pkg/mongo"
	"Ripple/internal/repository"
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type fakeUserRepo struct {
	users  map[uint64]*model.User
	nextID uint64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint64]*model.User{}, nextID: 1}
}

func (f *fakeUserRepo) addUser(name string, subject string) *model.User {
	u := &model.User{
		ID:        f.nextID,
		SubjectID: subject,
		Name:      name,
		CreatedAt: time.Now(),
	}
	f.users[u.ID] = u
	f.nextID++
	return u
}

func (f *fakeUserRepo) GetUserById(_ context.Context, id uint64) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetUserByIds(_ context.Context, ids []uint64) ([]*model.User, error) {
	res := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

func (f *fakeUserRepo) GetUserBySubject(_ context.Context, subject string) (*model.User, error) {
	for _, u := range f.users {
		if u.SubjectID == subject {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, user *model.User) error {
	existing, ok := f.users[user.ID]
	if !ok {
		return errors.New("user not found")
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.AvatarURL = user.AvatarURL
	return nil
}

func (f *fakeUserRepo) SearchByName(_ context.Context, excludeID uint64, query string, limit int) ([]*model.User, error) {
	res := make([]*model.User, 0)
	for _, u := range f.users {
		if u.ID == excludeID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(query)) {
			continue
		}
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

type fakeConvRepo struct {
	convs      map[uint64]*model.Conversation
	members    []*model.ConversationMember
	nextID     uint64
	createHook func() error
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{convs: map[uint64]*model.Conversation{}, nextID: 1}
}

func (f *fakeConvRepo) CreateConversation(_ context.Context, conv *model.Conversation, members []*model.ConversationMember) error {
	if f.createHook != nil {
		hook := f.createHook
		f.createHook = nil
		if err := hook(); err != nil {
			return err
		}
	}
	conv.ID = f.nextID
	f.nextID++
	f.convs[conv.ID] = conv
	for _, m := range members {
		m.ConversationID = conv.ID
		m.JoinedAt = time.Now()
		f.members = append(f.members, m)
	}
	return nil
}

func (f *fakeConvRepo) GetConversation(_ context.Context, convID uint64) (*model.Conversation, error) {
	return f.convs[convID], nil
}

func (f *fakeConvRepo) GetConversationByDirectKey(_ context.Context, key string) (*model.Conversation, error) {
	for _, c := range f.convs {
		if c.DirectKey != nil && *c.DirectKey == key {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeConvRepo) GetMembership(_ context.Context, convID uint64, userID uint64) (*model.ConversationMember, error) {
	for _, m := range f.members {
		if m.ConversationID == convID && m.UserID == userID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeConvRepo) AddMember(_ context.Context, member *model.ConversationMember) error {
	member.JoinedAt = time.Now()
	f.members = append(f.members, member)
	return nil
}

func (f *fakeConvRepo) GetUserMemberships(_ context.Context, userID uint64) ([]*model.ConversationMember, error) {
	res := make([]*model.ConversationMember, 0)
	for _, m := range f.members {
		if m.UserID != userID {
			continue
		}
		clone := *m
		if conv, ok := f.convs[m.ConversationID]; ok {
			clone.Conversation = *conv
		}
		res = append(res, &clone)
	}
	return res, nil
}

func (f *fakeConvRepo) GetMembers(_ context.Context, convID uint64) ([]*model.ConversationMember, error) {
	res := make([]*model.ConversationMember, 0)
	for _, m := range f.members {
		if m.ConversationID == convID {
			res = append(res, m)
		}
	}
	return res, nil
}

func (f *fakeConvRepo) MarkRead(_ context.Context, convID uint64, userID uint64, at time.Time) error {
	for _, m := range f.members {
		if m.ConversationID == convID && m.UserID == userID {
			m.UnreadCount = 0
			readAt := at
			m.LastReadAt = &readAt
		}
	}
	return nil
}

func (f *fakeConvRepo) StampLastMessage(_ context.Context, convID uint64, senderID uint64, snippet string, at time.Time) error {
	conv, ok := f.convs[convID]
	if !ok {
		return errors.New("conversation not found")
	}
	stamp := at
	conv.LastMessageAt = &stamp
	conv.LastMessageSnippet = snippet
	for _, m := range f.members {
		if m.ConversationID == convID && m.UserID != senderID {
			m.UnreadCount++
		}
	}
	return nil
}

func (f *fakeConvRepo) UpdateSnippet(_ context.Context, convID uint64, snippet string) error {
	conv, ok := f.convs[convID]
	if !ok {
		return errors.New("conversation not found")
	}
	conv.LastMessageSnippet = snippet
	return nil
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	msgs      map[string]*mongo.Message
	nextID    int
	failSaves int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{msgs: map[string]*mongo.Message{}, nextID: 1}
}

func (f *fakeMessageRepo) SaveMessage(_ context.Context, msg *mongo.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaves > 0 {
		f.failSaves--
		return errors.New("mongo unavailable")
	}
	if msg.ID == "" {
		msg.ID = "m" + strconv.Itoa(f.nextID)
		f.nextID++
	}
	f.msgs[msg.ID] = msg
	return nil
}

func (f *fakeMessageRepo) GetRecent(_ context.Context, convID uint64, limit int) ([]*mongo.Message, error) {
	res := make([]*mongo.Message, 0)
	for _, m := range f.msgs {
		if m.ConversationID == convID {
			res = append(res, m)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (f *fakeMessageRepo) GetByID(_ context.Context, id string) (*mongo.Message, error) {
	return f.msgs[id], nil
}

func (f *fakeMessageRepo) MarkDeleted(_ context.Context, id string, at time.Time) error {
	msg, ok := f.msgs[id]
	if !ok {
		return errors.New("message not found")
	}
	deletedAt := at
	msg.Body = ""
	msg.File = nil
	msg.Voice = nil
	msg.DeletedAt = &deletedAt
	return nil
}

type fakeReactionRepo struct {
	reactions []*mongo.Reaction
	nextID    int
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{nextID: 1}
}

func (f *fakeReactionRepo) Find(_ context.Context, messageID string, userID uint64, emoji string) (*mongo.Reaction, error) {
	for _, r := range f.reactions {
		if r.MessageID == messageID && r.UserID == userID && r.Emoji == emoji {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeReactionRepo) Insert(_ context.Context, r *mongo.Reaction) error {
	r.ID = "r" + strconv.Itoa(f.nextID)
	f.nextID++
	f.reactions = append(f.reactions, r)
	return nil
}

func (f *fakeReactionRepo) Delete(_ context.Context, id string) error {
	for i, r := range f.reactions {
		if r.ID == id {
			f.reactions = append(f.reactions[:i], f.reactions[i+1:]...)
			return nil
		}
	}
	return errors.New("reaction not found")
}

func (f *fakeReactionRepo) ListByMessageIDs(_ context.Context, messageIDs []string) ([]*mongo.Reaction, error) {
	idSet := make(map[string]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		idSet[id] = struct{}{}
	}
	res := make([]*mongo.Reaction, 0)
	for _, r := range f.reactions {
		if _, ok := idSet[r.MessageID]; ok {
			res = append(res, r)
		}
	}
	return res, nil
}

type signalEntry struct {
	userID    uint64
	sessionID string
	at        time.Time
}

type fakeSignalRepo struct {
	presence []signalEntry
	typing   map[uint64][]signalEntry
}

func newFakeSignalRepo() *fakeSignalRepo {
	return &fakeSignalRepo{typing: map[uint64][]signalEntry{}}
}

func (f *fakeSignalRepo) HeartbeatPresence(_ context.Context, userID uint64, sessionID string, at time.Time) error {
	for i, e := range f.presence {
		if e.userID == userID && e.sessionID == sessionID {
			f.presence[i].at = at
			return nil
		}
	}
	f.presence = append(f.presence, signalEntry{userID: userID, sessionID: sessionID, at: at})
	return nil
}

func (f *fakeSignalRepo) EndPresence(_ context.Context, userID uint64, sessionID string) error {
	for i, e := range f.presence {
		if e.userID == userID && e.sessionID == sessionID {
			f.presence = append(f.presence[:i], f.presence[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeSignalRepo) ActivePresence(_ context.Context, since time.Time) ([]repository.PresenceEntry, error) {
	res := make([]repository.PresenceEntry, 0)
	for _, e := range f.presence {
		if !e.at.Before(since) {
			res = append(res, repository.PresenceEntry{UserID: e.userID, SessionID: e.sessionID})
		}
	}
	return res, nil
}

func (f *fakeSignalRepo) PingTyping(_ context.Context, convID uint64, userID uint64, at time.Time) error {
	for i, e := range f.typing[convID] {
		if e.userID == userID {
			f.typing[convID][i].at = at
			return nil
		}
	}
	f.typing[convID] = append(f.typing[convID], signalEntry{userID: userID, at: at})
	return nil
}

func (f *fakeSignalRepo) ActiveTyping(_ context.Context, convID uint64, since time.Time) ([]uint64, error) {
	res := make([]uint64, 0)
	for _, e := range f.typing[convID] {
		if !e.at.Before(since) {
			res = append(res, e.userID)
		}
	}
	return res, nil
}

type fakeSigner struct{}

func (f *fakeSigner) UploadURL(_ context.Context, objectName string) (string, error) {
	return "https://storage.test/upload/" + objectName, nil
}

func (f *fakeSigner) DownloadURL(_ context.Context, objectName string) (string, error) {
	return "https://storage.test/get/" + objectName, nil
}

type publishCall struct {
	channel string
	payload []byte
}

type fakePublisher struct {
	calls chan publishCall
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{calls: make(chan publishCall, 64)}
}

func (f *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	f.calls <- publishCall{channel: channel, payload: payload}
	return nil
}
