package export

import (
	"time"

	"go.uber.org/zap"
)

// Stage identifies a progress notification.
type Stage string

const (
	StageProcessing  Stage = "processing"
	StageRendering   Stage = "rendering"
	StageCompressing Stage = "compressing"
	StageComplete    Stage = "complete"
)

// Message keys for each stage, looked up through DownloadOptions.T.
var stageKeys = map[Stage]string{
	StageProcessing:  "common.processing",
	StageRendering:   "common.rendering",
	StageCompressing: "common.compressing",
	StageComplete:    "common.downloadComplete",
}

// ProgressFunc receives a stage and its localized message.
type ProgressFunc func(stage Stage, message string)

type progressEvent struct {
	stage   Stage
	message string
}

// notifier delivers progress on its own goroutine. A slow or panicking
// observer never holds up the export; when the buffer is full the
// notification is dropped.
type notifier struct {
	ch     chan progressEvent
	done   chan struct{}
	logger *zap.Logger
}

const progressBuffer = 8

// drainTimeout is how long close waits for queued notifications, so the
// completion message is seen before Export returns.
const drainTimeout = 100 * time.Millisecond

func newNotifier(fn ProgressFunc, logger *zap.Logger) *notifier {
	if fn == nil {
		return nil
	}
	n := &notifier{
		ch:     make(chan progressEvent, progressBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
	go n.run(fn)
	return n
}

func (n *notifier) run(fn ProgressFunc) {
	defer close(n.done)
	for ev := range n.ch {
		n.deliver(fn, ev)
	}
}

func (n *notifier) deliver(fn ProgressFunc, ev progressEvent) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Warn("progress observer panicked",
				zap.String("stage", string(ev.stage)),
				zap.Any("panic", r),
			)
		}
	}()
	fn(ev.stage, ev.message)
}

// notify is safe on a nil notifier.
func (n *notifier) notify(stage Stage, message string) {
	if n == nil {
		return
	}
	select {
	case n.ch <- progressEvent{stage: stage, message: message}:
	default:
		n.logger.Debug("progress notification dropped", zap.String("stage", string(stage)))
	}
}

// close stops accepting notifications and waits up to drainTimeout for
// the observer to finish the queued ones.
func (n *notifier) close() {
	if n == nil {
		return
	}
	close(n.ch)

	timer := time.NewTimer(drainTimeout)
	defer timer.Stop()
	select {
	case <-n.done:
	case <-timer.C:
		n.logger.Debug("progress observer still busy after export")
	}
}
