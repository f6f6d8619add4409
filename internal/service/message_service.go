package service

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/pkg/mongo"
	"Ripple/internal/repository"
	"context"
	log "log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// MessageService 消息服务接口定义
type MessageService interface {
	List(ctx context.Context, callerID uint64, convID uint64, limit int) ([]*dto.MessageDTO, error)
	Send(ctx context.Context, callerID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error)
	SendFile(ctx context.Context, callerID uint64, req *dto.SendFileReq) (*dto.MessageDTO, error)
	SendVoice(ctx context.Context, callerID uint64, req *dto.SendVoiceReq) (*dto.MessageDTO, error)
	SoftDelete(ctx context.Context, callerID uint64, messageID string) error
	GenerateUploadURL(ctx context.Context, callerID uint64, req *dto.UploadURLReq) (*dto.UploadTicketDTO, error)
	Close()
}

type messageServiceImpl struct {
	convRepo     repository.ConversationRepo
	userRepo     repository.UserRepo
	messageRepo  mongo.MessageRepo
	reactionRepo mongo.ReactionRepo
	signer       StorageSigner
	publisher    EventPublisher
	retryChan    chan *mongo.Message
	wg           sync.WaitGroup
	stopChan     chan struct{}
}

// NewMessageService 构造函数：初始化服务并启动异步补偿工作池
func NewMessageService(
	convRepo repository.ConversationRepo,
	userRepo repository.UserRepo,
	messageRepo mongo.MessageRepo,
	reactionRepo mongo.ReactionRepo,
	signer StorageSigner,
	publisher EventPublisher,
) MessageService {
	s := &messageServiceImpl{
		convRepo:     convRepo,
		userRepo:     userRepo,
		messageRepo:  messageRepo,
		reactionRepo: reactionRepo,
		signer:       signer,
		publisher:    publisher,
		retryChan:    make(chan *mongo.Message, 2048),
		stopChan:     make(chan struct{}),
	}

	workerCount := 5
	s.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go s.retryWorker()
	}

	return s
}

// List 拉取会话最近消息，按时间升序返回
func (s *messageServiceImpl) List(ctx context.Context, callerID uint64, convID uint64, limit int) ([]*dto.MessageDTO, error) {
	if err := s.requireMembership(ctx, convID, callerID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	msgs, err := s.messageRepo.GetRecent(ctx, convID, limit)
	if err != nil {
		return nil, err
	}

	// 倒序存储，正序展示
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	senders, err := s.loadSenders(ctx, msgs)
	if err != nil {
		return nil, err
	}

	msgIDs := make([]string, 0, len(msgs))
	for _, m := range msgs {
		msgIDs = append(msgIDs, m.ID)
	}
	reactions, err := s.reactionRepo.ListByMessageIDs(ctx, msgIDs)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]map[string]int)
	mine := make(map[string][]string)
	for _, r := range reactions {
		if counts[r.MessageID] == nil {
			counts[r.MessageID] = make(map[string]int)
		}
		counts[r.MessageID][r.Emoji]++
		if r.UserID == callerID {
			mine[r.MessageID] = append(mine[r.MessageID], r.Emoji)
		}
	}

	res := make([]*dto.MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		d := s.toMessageDTO(m)
		d.Sender = senders[m.SenderID]
		d.ReactionCounts = sortedCounts(counts[m.ID])
		if mine[m.ID] != nil {
			d.MyReactions = mine[m.ID]
		}

		// 墓碑消息不再出可下载链接
		if m.DeletedAt == nil {
			if m.File != nil {
				if url, err := s.signer.DownloadURL(ctx, m.File.StorageKey); err == nil {
					d.FileURL = url
				} else {
					log.Warn("presign file url failed", "message_id", m.ID, "err", err)
				}
			}
			if m.Voice != nil {
				if url, err := s.signer.DownloadURL(ctx, m.Voice.StorageKey); err == nil {
					d.VoiceURL = url
				} else {
					log.Warn("presign voice url failed", "message_id", m.ID, "err", err)
				}
			}
		}
		res = append(res, d)
	}
	return res, nil
}

// Send 发送文本消息
func (s *messageServiceImpl) Send(ctx context.Context, callerID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error) {
	if err := s.requireMembership(ctx, req.ConversationID, callerID); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	msg := &mongo.Message{
		ConversationID: req.ConversationID,
		SenderID:       callerID,
		MsgType:        consts.MsgTypeText,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	return s.persistAndFanout(ctx, msg, truncateSnippet(body))
}

// SendFile 发送文件消息，字节已由客户端直传对象存储
func (s *messageServiceImpl) SendFile(ctx context.Context, callerID uint64, req *dto.SendFileReq) (*dto.MessageDTO, error) {
	if err := s.requireMembership(ctx, req.ConversationID, callerID); err != nil {
		return nil, err
	}

	f := req.File
	if f.FileSize <= 0 || f.FileSize > consts.MaxUploadBytes {
		return nil, ErrFileSizeInvalid
	}
	if !mimeAllowed(f.MimeType) {
		return nil, ErrFileNotSupported
	}

	msg := &mongo.Message{
		ConversationID: req.ConversationID,
		SenderID:       callerID,
		MsgType:        consts.MsgTypeFile,
		File: &mongo.FileMeta{
			StorageKey: f.StorageKey,
			FileName:   f.FileName,
			FileSize:   f.FileSize,
			MimeType:   f.MimeType,
		},
		CreatedAt: time.Now(),
	}
	return s.persistAndFanout(ctx, msg, truncateSnippet(consts.FileSnippetPrefix+f.FileName))
}

// SendVoice 发送语音消息
func (s *messageServiceImpl) SendVoice(ctx context.Context, callerID uint64, req *dto.SendVoiceReq) (*dto.MessageDTO, error) {
	if err := s.requireMembership(ctx, req.ConversationID, callerID); err != nil {
		return nil, err
	}

	v := req.Voice
	if !strings.HasPrefix(strings.ToLower(v.MimeType), consts.MimePrefixAudio) {
		return nil, ErrFileNotSupported
	}
	if v.DurationMs <= 0 || v.DurationMs > consts.MaxVoiceDurationMs {
		return nil, ErrVoiceDuration
	}

	msg := &mongo.Message{
		ConversationID: req.ConversationID,
		SenderID:       callerID,
		MsgType:        consts.MsgTypeVoice,
		Voice: &mongo.VoiceMeta{
			StorageKey: v.StorageKey,
			DurationMs: v.DurationMs,
			MimeType:   v.MimeType,
		},
		CreatedAt: time.Now(),
	}
	return s.persistAndFanout(ctx, msg, consts.VoiceSnippet)
}

// SoftDelete 撤回消息：仅发送者可操作，重复撤回静默成功
func (s *messageServiceImpl) SoftDelete(ctx context.Context, callerID uint64, messageID string) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.SenderID != callerID {
		return ErrForbidden
	}
	if msg.DeletedAt != nil {
		return nil
	}

	if err := s.messageRepo.MarkDeleted(ctx, messageID, time.Now()); err != nil {
		return err
	}

	// 撤回的恰是会话最后一条时改写预览
	conv, err := s.convRepo.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		return err
	}
	if conv != nil && conv.LastMessageAt != nil &&
		conv.LastMessageAt.UnixMilli() == msg.CreatedAt.UnixMilli() {
		if err := s.convRepo.UpdateSnippet(ctx, msg.ConversationID, consts.DeletedSnippet); err != nil {
			return err
		}
	}
	return nil
}

// GenerateUploadURL 申请附件直传凭证，对象名按日期分目录防碰撞
func (s *messageServiceImpl) GenerateUploadURL(ctx context.Context, callerID uint64, req *dto.UploadURLReq) (*dto.UploadTicketDTO, error) {
	if err := s.requireMembership(ctx, req.ConversationID, callerID); err != nil {
		return nil, err
	}

	ext := filepath.Ext(req.FileName)
	objectName := "chat/" + time.Now().Format("20060102") + "/" + uuid.NewString() + ext

	url, err := s.signer.UploadURL(ctx, objectName)
	if err != nil {
		return nil, err
	}
	return &dto.UploadTicketDTO{UploadURL: url, StorageKey: objectName}, nil
}

func (s *messageServiceImpl) Close() {
	close(s.stopChan)
	s.wg.Wait()
	log.Info("MessageService shut down gracefully")
}

// persistAndFanout 存入 MongoDB、盖会话时间戳并推送到全体成员频道
func (s *messageServiceImpl) persistAndFanout(ctx context.Context, msg *mongo.Message, snippet string) (*dto.MessageDTO, error) {
	writeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.messageRepo.SaveMessage(writeCtx, msg); err != nil {
		log.Error("save message failed, enqueue retry", "conv_id", msg.ConversationID, "err", err)
		select {
		case s.retryChan <- msg:
		default:
		}
	}

	if err := s.convRepo.StampLastMessage(ctx, msg.ConversationID, msg.SenderID, snippet, msg.CreatedAt); err != nil {
		log.Error("stamp last message failed", "conv_id", msg.ConversationID, "err", err)
	}

	d := s.toMessageDTO(msg)

	members, err := s.convRepo.GetMembers(ctx, msg.ConversationID)
	if err != nil {
		log.Error("load members for fanout failed", "conv_id", msg.ConversationID, "err", err)
		return d, nil
	}
	event := &dto.NewMessageEvent{
		Type:           "NEW_MESSAGE",
		ConversationID: msg.ConversationID,
		Message:        d,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return d, nil
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer pubCancel()
		for _, m := range members {
			channel := consts.IMUserKey + strconv.FormatUint(m.UserID, 10)
			if err := s.publisher.Publish(pubCtx, channel, payload); err != nil {
				log.Warn("publish new message failed", "channel", channel, "err", err)
			}
		}
	}()

	return d, nil
}

func (s *messageServiceImpl) requireMembership(ctx context.Context, convID uint64, userID uint64) error {
	membership, err := s.convRepo.GetMembership(ctx, convID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return ErrForbidden
	}
	return nil
}

func (s *messageServiceImpl) loadSenders(ctx context.Context, msgs []*mongo.Message) (map[uint64]*dto.UserDTO, error) {
	idSet := make(map[uint64]struct{})
	for _, m := range msgs {
		idSet[m.SenderID] = struct{}{}
	}
	ids := make([]uint64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	res := make(map[uint64]*dto.UserDTO, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	users, err := s.userRepo.GetUserByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		res[u.ID] = &dto.UserDTO{
			ID:        u.ID,
			Name:      displayTitleFor(u.Name, u.ID),
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
			CreatedAt: u.CreatedAt,
		}
	}
	return res, nil
}

func (s *messageServiceImpl) toMessageDTO(msg *mongo.Message) *dto.MessageDTO {
	d := &dto.MessageDTO{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		MsgType:        msg.MsgType,
		Body:           msg.Body,
		ReactionCounts: []dto.ReactionCountDTO{},
		MyReactions:    []string{},
		CreatedAt:      msg.CreatedAt,
		DeletedAt:      msg.DeletedAt,
	}
	if msg.File != nil {
		d.FileName = msg.File.FileName
		d.FileSize = msg.File.FileSize
		d.MimeType = msg.File.MimeType
	}
	if msg.Voice != nil {
		d.DurationMs = msg.Voice.DurationMs
		d.MimeType = msg.Voice.MimeType
	}
	return d
}

func (s *messageServiceImpl) retryWorker() {
	defer s.wg.Done()
	for {
		select {
		case msg := <-s.retryChan:
			s.retrySave(msg)
		case <-s.stopChan:
			// 停机前清空积压的补偿写，不丢消息
			for {
				select {
				case msg := <-s.retryChan:
					s.retrySave(msg)
				default:
					return
				}
			}
		}
	}
}

func (s *messageServiceImpl) retrySave(msg *mongo.Message) {
	backoff := time.Second
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.messageRepo.SaveMessage(ctx, msg)
		cancel()
		if err == nil {
			return
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	log.Error("message retry exhausted", "conv_id", msg.ConversationID)
}

// mimeAllowed 附件类型白名单判定，比较前统一小写
func mimeAllowed(mimeType string) bool {
	mt := strings.ToLower(mimeType)
	if strings.HasPrefix(mt, consts.MimePrefixImage) ||
		strings.HasPrefix(mt, consts.MimePrefixVideo) ||
		strings.HasPrefix(mt, consts.MimePrefixAudio) {
		return true
	}
	for _, m := range consts.AllowedDocumentMimes {
		if mt == m {
			return true
		}
	}
	return false
}

// truncateSnippet 按字符截断会话预览
func truncateSnippet(s string) string {
	runes := []rune(s)
	if len(runes) <= consts.SnippetMaxLen {
		return s
	}
	return string(runes[:consts.SnippetMaxLen])
}

// sortedCounts 聚合计数按热度排序，同热度按表情字典序
func sortedCounts(counts map[string]int) []dto.ReactionCountDTO {
	res := make([]dto.ReactionCountDTO, 0, len(counts))
	for emoji, count := range counts {
		res = append(res, dto.ReactionCountDTO{Emoji: emoji, Count: count})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}
		return res[i].Emoji < res[j].Emoji
	})
	return res
}
