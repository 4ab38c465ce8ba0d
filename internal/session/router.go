package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/esra-convergent/woman-talking/internal/bus"
	"github.com/esra-convergent/woman-talking/internal/emotion"
)

// AttributePublisher publishes small key-value metadata to all session
// participants. The room transport implements this.
type AttributePublisher interface {
	SetAttributes(ctx context.Context, attrs map[string]string) error
}

// defaultPublishTimeout bounds a single metadata publish. Emotion display is
// best-effort; a publish that cannot complete in time is dropped.
const defaultPublishTimeout = 10 * time.Second

// Router reacts to new conversation items: it classifies user utterances and
// publishes the resulting emotion event. Assistant items are ignored, since
// the published emotion models the agent's reaction to the user.
type Router struct {
	classifier *emotion.Classifier
	publisher  AttributePublisher
	bus        *bus.EventBus
	logger     zerolog.Logger

	publishTimeout time.Duration

	mu  sync.Mutex
	sub bus.Subscription
	wg  sync.WaitGroup

	started bool
}

// NewRouter creates a router over the given classifier and publisher.
func NewRouter(classifier *emotion.Classifier, publisher AttributePublisher, b *bus.EventBus, logger zerolog.Logger) *Router {
	return &Router{
		classifier:     classifier,
		publisher:      publisher,
		bus:            b,
		logger:         logger.With().Str("component", "emotion-router").Logger(),
		publishTimeout: defaultPublishTimeout,
	}
}

// Start subscribes the router to conversation item events.
func (r *Router) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}

	r.sub = r.bus.Subscribe(bus.EventTypeItemAdded, func(evt bus.Event) {
		item, ok := evt.Data["item"].(Item)
		if !ok {
			return
		}
		// A handler already dispatched by the bus can arrive after Close
		// has unsubscribed. Registering with the WaitGroup under the mutex
		// makes that window visible to Close: either the handler is counted
		// before Wait, or it observes started == false and drops the item.
		r.mu.Lock()
		if !r.started {
			r.mu.Unlock()
			return
		}
		r.wg.Add(1)
		r.mu.Unlock()
		defer r.wg.Done()

		r.HandleItem(item)
	})
	r.started = true
	r.logger.Info().Msg("Emotion hooks registered")
}

// Close unsubscribes from the bus and waits for in-flight publishes to
// finish.
func (r *Router) Close() {
	r.mu.Lock()
	if r.started {
		r.bus.Unsubscribe(r.sub)
		r.started = false
	}
	r.mu.Unlock()

	r.wg.Wait()
}

// HandleItem applies the routing policy to one conversation item. The call
// never blocks on the network: the publish runs on its own goroutine and
// failures are logged and dropped.
func (r *Router) HandleItem(item Item) {
	if item.Role == RoleAssistant {
		r.logger.Debug().Msg("Skipping agent's own message")
		return
	}

	text := item.Text()
	if strings.TrimSpace(text) == "" {
		r.logger.Debug().Msg("Skipping item without usable text")
		return
	}

	label, commanded := r.classifier.DetectCommand(text)
	if !commanded {
		label = r.classifier.Classify(text)
	}

	r.logger.Info().
		Str("emotion", string(label)).
		Bool("commanded", commanded).
		Str("text", emotion.Snippet(text, 50)).
		Msg("Agent reaction emotion")

	r.bus.Publish(bus.Event{
		Type: bus.EventTypeEmotionDetected,
		Data: map[string]any{"label": label, "commanded": commanded},
	})

	evt := emotion.NewEvent(label, emotion.SourceAgent, text)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.publish(evt)
	}()
}

// publish serializes the event and sends it as a participant attribute.
// Transport errors are logged and otherwise ignored; the session continues.
func (r *Router) publish(evt emotion.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), r.publishTimeout)
	defer cancel()

	payload, err := evt.Marshal()
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to serialize emotion event")
		return
	}

	if err := r.publisher.SetAttributes(ctx, map[string]string{emotion.AttributeKey: payload}); err != nil {
		r.logger.Warn().
			Err(err).
			Str("emotion", string(evt.Emotion)).
			Msg("Emotion publish failed, dropping")
		return
	}

	r.logger.Debug().
		Str("emotion", string(evt.Emotion)).
		Str("source", evt.Source).
		Msg("Sent emotion via attributes")

	r.bus.Publish(bus.Event{
		Type: bus.EventTypeEmotionPublished,
		Data: map[string]any{"label": evt.Emotion},
	})
}
