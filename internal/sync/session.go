package sync

import (
	"context"
	"log"
	"time"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
)

// Command 在会话 goroutine 上执行的一段操作
type Command func(ctx context.Context)

// Backends 会话依赖的全部读写面
type Backends struct {
	Chat          ChatBackend
	Presence      PresenceBackend
	Channels      ChannelBackend
	DMs           DMBackend
	Posts         PostBackend
	Notifications NotificationBackend
}

// Session 一个在线用户的同步会话。变更流、客户端命令、心跳
// 全部汇到 Run 的单一 goroutine 上，模块内部因此不需要锁
type Session struct {
	User *model.User

	Chat          *ChatSync
	Channels      *ChannelsSync
	DMs           *DMSync
	Posts         *PostsSync
	Notifications *NotificationsSync

	sub    *changefeed.Subscriber
	events <-chan changefeed.Event
	cmds   chan Command
	done   chan struct{}

	// OnChange 某张表的视图变化后回调，ws 网关用它推送增量
	OnChange func(table string)
}

func NewSession(user *model.User, b Backends, sub *changefeed.Subscriber) *Session {
	return &Session{
		User:          user,
		Chat:          NewChatSync(b.Chat, b.Presence, user),
		Channels:      NewChannelsSync(b.Channels, user),
		DMs:           NewDMSync(b.DMs, user),
		Posts:         NewPostsSync(b.Posts, user),
		Notifications: NewNotificationsSync(b.Notifications, user),
		sub:           sub,
		cmds:          make(chan Command, 16),
		done:          make(chan struct{}),
	}
}

// Start 先订阅再加载，订阅确认前的窗口里不会漏事件。
// 帖子/通知的集合缺失在各自 Load 里降级，不算启动失败
func (s *Session) Start(ctx context.Context) error {
	events, err := s.sub.Subscribe(ctx,
		changefeed.TableChannels,
		changefeed.TableMessages,
		changefeed.TableDirectMessages,
		changefeed.TablePosts,
		changefeed.TableNotifications,
		changefeed.TableUserPresence,
	)
	if err != nil {
		return err
	}
	s.events = events

	if err := s.Channels.Load(ctx); err != nil {
		return err
	}
	if def := s.Channels.Default(); def != nil {
		if err := s.Chat.SetChannel(ctx, def.ID); err != nil {
			return err
		}
	}
	if err := s.Chat.LoadOnline(ctx); err != nil {
		log.Printf("session %s: load online failed: %v", s.User.ID, err)
	}
	if err := s.Posts.Load(ctx); err != nil {
		log.Printf("session %s: load posts failed: %v", s.User.ID, err)
	}
	if err := s.Notifications.Load(ctx); err != nil {
		log.Printf("session %s: load notifications failed: %v", s.User.ID, err)
	}
	if err := s.DMs.LoadPartners(ctx); err != nil {
		log.Printf("session %s: load dm partners failed: %v", s.User.ID, err)
	}
	return s.Chat.Heartbeat(ctx)
}

// Done 主循环退出后关闭。网关靠它发现会话已死并收掉连接
func (s *Session) Done() <-chan struct{} { return s.done }

// Do 从别的 goroutine（ws 读循环）投递命令。
// 主循环已退出时丢弃命令并返回 false，不会卡在满缓冲上
func (s *Session) Do(cmd Command) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.cmds <- cmd:
		return true
	case <-s.done:
		return false
	}
}

// Run 会话主循环。事件、命令、心跳逐个处理，互不并发。
// 事件 channel 关闭（订阅连接断开）时退出并关闭 done
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)

	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.events:
			if !ok {
				return
			}
			s.dispatch(ev)
		case cmd := <-s.cmds:
			cmd(ctx)
		case <-heartbeat.C:
			if err := s.Chat.Heartbeat(ctx); err != nil {
				log.Printf("session %s: heartbeat failed: %v", s.User.ID, err)
			}
		}
	}
}

func (s *Session) dispatch(ev changefeed.Event) {
	switch ev.Table {
	case changefeed.TableChannels:
		s.Channels.Apply(ev)
	case changefeed.TableMessages, changefeed.TableUserPresence:
		s.Chat.Apply(ev)
	case changefeed.TableDirectMessages:
		s.DMs.Apply(ev)
	case changefeed.TablePosts:
		s.Posts.Apply(ev)
	case changefeed.TableNotifications:
		s.Notifications.Apply(ev)
	default:
		return
	}
	if s.OnChange != nil {
		s.OnChange(ev.Table)
	}
}
