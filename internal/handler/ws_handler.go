package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	gosync "sync"

	"instasphere/internal/changefeed"
	"instasphere/internal/service"
	"instasphere/internal/sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler 实时网关：每条连接一个同步会话，
// 读循环把客户端命令投到会话 goroutine，视图变化时推快照
type WSHandler struct {
	userSvc  *service.UserService
	backends sync.Backends
	sub      *changefeed.Subscriber
	presence *service.PresenceService
}

func NewWSHandler(userSvc *service.UserService, backends sync.Backends, sub *changefeed.Subscriber, presence *service.PresenceService) *WSHandler {
	return &WSHandler{userSvc: userSvc, backends: backends, sub: sub, presence: presence}
}

// ClientCommand 客户端指令信封
type ClientCommand struct {
	Action    string  `json:"action"`
	ChannelID string  `json:"channel_id,omitempty"`
	PartnerID string  `json:"partner_id,omitempty"`
	TargetID  string  `json:"target_id,omitempty"`
	Content   string  `json:"content,omitempty"`
	Title     string  `json:"title,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	ParentID  *string `json:"parent_id,omitempty"`
}

func (h *WSHandler) Serve(c *gin.Context) {
	user, err := h.userSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}

	rawConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	conn := &wsConn{Conn: rawConn}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	session := sync.NewSession(user, h.backends, h.sub)
	if err := session.Start(ctx); err != nil {
		h.writeWS(conn, gin.H{"type": "error", "msg": err.Error()})
		return
	}
	defer func() {
		_ = h.presence.Offline(context.Background(), user)
	}()

	session.OnChange = func(table string) {
		h.pushSnapshot(conn, session, table)
	}

	// 首屏全量快照
	for _, table := range []string{
		changefeed.TableChannels, changefeed.TableMessages, changefeed.TablePosts,
		changefeed.TableNotifications, changefeed.TableUserPresence,
	} {
		h.pushSnapshot(conn, session, table)
	}

	go session.Run(ctx)

	// 会话主循环退出（订阅断开）时收掉连接，让读循环跟着返回
	go func() {
		<-session.Done()
		_ = conn.Close()
	}()

	// 读循环：指令进会话 goroutine 执行，串行无锁
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd ClientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			h.writeWS(conn, gin.H{"type": "error", "msg": "bad command"})
			continue
		}
		h.execute(conn, session, cmd)
	}
}

func (h *WSHandler) execute(conn *wsConn, s *sync.Session, cmd ClientCommand) {
	accepted := s.Do(func(ctx context.Context) {
		var err error
		switch cmd.Action {
		case "set_channel":
			err = s.Chat.SetChannel(ctx, cmd.ChannelID)
			h.pushSnapshot(conn, s, changefeed.TableMessages)
		case "send_message":
			_, err = s.Chat.Send(ctx, cmd.Content)
			h.pushSnapshot(conn, s, changefeed.TableMessages)
		case "delete_message":
			err = s.Chat.Delete(ctx, cmd.TargetID)
			h.pushSnapshot(conn, s, changefeed.TableMessages)
		case "like_message":
			err = s.Chat.Like(ctx, cmd.TargetID)
		case "create_channel":
			_, err = s.Channels.Create(ctx, cmd.Title, cmd.Content)
			h.pushSnapshot(conn, s, changefeed.TableChannels)
		case "delete_channel":
			err = s.Channels.Delete(ctx, cmd.ChannelID)
			h.pushSnapshot(conn, s, changefeed.TableChannels)
		case "set_partner":
			err = s.DMs.SetPartner(ctx, cmd.PartnerID)
			h.pushSnapshot(conn, s, changefeed.TableDirectMessages)
		case "send_dm":
			_, err = s.DMs.Send(ctx, cmd.Content)
			h.pushSnapshot(conn, s, changefeed.TableDirectMessages)
		case "delete_dm":
			err = s.DMs.Delete(ctx, cmd.TargetID)
			h.pushSnapshot(conn, s, changefeed.TableDirectMessages)
		case "create_post":
			_, err = s.Posts.Create(ctx, cmd.Title, cmd.Content, cmd.ImageURL)
			h.pushSnapshot(conn, s, changefeed.TablePosts)
		case "delete_post":
			err = s.Posts.Delete(ctx, cmd.TargetID)
			h.pushSnapshot(conn, s, changefeed.TablePosts)
		case "like_post":
			err = s.Posts.ToggleLike(ctx, cmd.TargetID)
			h.pushSnapshot(conn, s, changefeed.TablePosts)
		case "share_post":
			err = s.Posts.Share(ctx, cmd.TargetID)
			h.pushSnapshot(conn, s, changefeed.TablePosts)
		case "add_comment":
			_, err = s.Posts.AddComment(ctx, cmd.TargetID, cmd.Content, cmd.ParentID)
		case "mark_read":
			err = s.Notifications.MarkRead(ctx, cmd.TargetID)
			h.pushSnapshot(conn, s, changefeed.TableNotifications)
		case "mark_all_read":
			err = s.Notifications.MarkAllRead(ctx)
			h.pushSnapshot(conn, s, changefeed.TableNotifications)
		default:
			h.writeWS(conn, gin.H{"type": "error", "msg": "unknown action " + cmd.Action})
			return
		}
		if err != nil {
			h.writeWS(conn, gin.H{"type": "error", "action": cmd.Action, "msg": err.Error()})
		}
	})
	if !accepted {
		_ = conn.Close()
	}
}

// pushSnapshot 把某张表对应的本地视图整体推给客户端
func (h *WSHandler) pushSnapshot(conn *wsConn, s *sync.Session, table string) {
	var payload any
	switch table {
	case changefeed.TableChannels:
		payload = s.Channels.Channels.Items()
	case changefeed.TableMessages:
		payload = s.Chat.Messages.Items()
	case changefeed.TableDirectMessages:
		payload = s.DMs.Messages.Items()
	case changefeed.TablePosts:
		payload = s.Posts.Posts.Items()
	case changefeed.TableNotifications:
		payload = s.Notifications.Notifications.Items()
	case changefeed.TableUserPresence:
		payload = s.Chat.Online.Items()
	default:
		return
	}
	h.writeWS(conn, gin.H{"type": "snapshot", "table": table, "data": payload})
}

// wsConn 会话 goroutine 和读循环都可能写同一条连接，写操作加锁串行
type wsConn struct {
	*websocket.Conn
	mu gosync.Mutex
}

func (h *WSHandler) writeWS(conn *wsConn, v any) {
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if err := conn.WriteJSON(v); err != nil {
		log.Printf("ws: write failed: %v", err)
	}
}
