// Package feedback 异步消费用户对推荐结果的反馈。
//
// 反馈提交在请求路径上必须非阻塞：事件进有界队列立即返回，
// 后台 worker 把事件扇出到实验簿记、互动时间记录与缓存失效三处。
package feedback

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/scholarrec/cache"
	"github.com/rushteam/scholarrec/core"
	"github.com/rushteam/scholarrec/experiment"
)

// Event 是一次反馈事件。
type Event struct {
	UserID    string
	ItemID    string
	ItemType  core.ItemType
	Type      core.FeedbackType
	SessionID string
	Position  int
	VariantID string
	Tags      []string

	// OccurredAt 为零值时按入队时间处理。
	OccurredAt time.Time
}

// Clicked 判断该反馈是否计为一次点击。
// not_interested 是明确的负向信号，不算点击。
func (e *Event) Clicked() bool {
	return e.Type == core.FeedbackPositive
}

// engagementScore 把反馈类型映射为互动强度分，供时间维度画像聚合。
func (e *Event) engagementScore() float64 {
	switch e.Type {
	case core.FeedbackPositive:
		return 5
	case core.FeedbackNegative:
		return 1
	default: // not_interested
		return 0.5
	}
}

// Sink 是反馈事件的旁路出口（如 Kafka），供离线链路消费。
type Sink interface {
	Publish(ctx context.Context, event *Event) error
}

// Collector 是有界队列 + 单 worker 的异步反馈收集器。
type Collector struct {
	experiments *experiment.Manager
	engagement  core.EngagementStore
	cache       *cache.RecommendationCache
	sinks       []Sink
	logger      *zap.Logger

	events chan *Event
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	// mu 保护 closed：Submit 持读锁入队，Close 持写锁置位后才通知 worker
	// 排空，保证 Close 前入队成功的事件一定被处理。
	mu     sync.RWMutex
	closed bool
}

// DefaultQueueSize 是反馈队列的默认容量。
const DefaultQueueSize = 1024

// NewCollector 创建收集器并启动后台 worker。
// experiments / engagement / cache 任意一个可以为 nil，对应的扇出被跳过。
func NewCollector(
	experiments *experiment.Manager,
	engagement core.EngagementStore,
	recCache *cache.RecommendationCache,
	queueSize int,
	logger *zap.Logger,
) *Collector {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		experiments: experiments,
		engagement:  engagement,
		cache:       recCache,
		logger:      logger,
		events:      make(chan *Event, queueSize),
		done:        make(chan struct{}),
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// AddSink 注册一个事件旁路出口。须在提交事件前调用。
func (c *Collector) AddSink(sink Sink) {
	if sink != nil {
		c.sinks = append(c.sinks, sink)
	}
}

// Submit 把事件入队，立即返回。队列满时丢弃并告警，不阻塞调用方。
func (c *Collector) Submit(event *Event) error {
	if c == nil || event == nil {
		return nil
	}
	if event.UserID == "" {
		return core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput,
			"feedback: user id is required")
	}
	if !core.ValidateFeedbackType(event.Type) {
		return core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput,
			"feedback: unknown feedback type "+string(event.Type))
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.NewDomainError(core.ModuleService, core.ErrorCodeUnavailable,
			"feedback: collector closed")
	}

	select {
	case c.events <- event:
		return nil
	default:
		c.logger.Warn("feedback: queue full, event dropped",
			zap.String("user_id", event.UserID),
			zap.String("item_id", event.ItemID))
		return nil
	}
}

// Close 停止接收新事件，排空队列后返回。
// 在 Close 返回前 Submit 成功的事件保证被处理；之后 Submit 返回 UNAVAILABLE。
func (c *Collector) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
	})
	c.wg.Wait()
}

func (c *Collector) run() {
	defer c.wg.Done()
	for {
		select {
		case event := <-c.events:
			c.process(event)
		case <-c.done:
			// 关闭后排空既有事件再退出
			for {
				select {
				case event := <-c.events:
					c.process(event)
				default:
					return
				}
			}
		}
	}
}

func (c *Collector) process(event *Event) {
	// 扇出处理不带请求上下文，每个事件给一个独立的处理窗口
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if c.experiments != nil {
		err := c.experiments.RecordFeedback(ctx, &experiment.Feedback{
			UserID:    event.UserID,
			ItemID:    event.ItemID,
			VariantID: event.VariantID,
			Type:      event.Type,
			Clicked:   event.Clicked(),
		})
		if err != nil {
			c.logger.Warn("feedback: experiment bookkeeping failed",
				zap.String("user_id", event.UserID), zap.Error(err))
		}
	}

	if c.engagement != nil {
		at := event.OccurredAt
		err := c.engagement.RecordEngagementTime(ctx, &core.EngagementTimeRecord{
			UserID:          event.UserID,
			HourOfDay:       at.Hour(),
			DayOfWeek:       int(at.Weekday()),
			ContentType:     event.ItemType,
			Tags:            event.Tags,
			EngagementScore: event.engagementScore(),
			CreatedAt:       at,
		})
		if err != nil {
			c.logger.Warn("feedback: engagement record failed",
				zap.String("user_id", event.UserID), zap.Error(err))
		}
	}

	// 用户偏好已变化，旧的推荐结果不再可信
	if c.cache != nil {
		c.cache.InvalidateUser(ctx, event.UserID)
	}

	for _, sink := range c.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			c.logger.Warn("feedback: sink publish failed",
				zap.String("user_id", event.UserID), zap.Error(err))
		}
	}
}
