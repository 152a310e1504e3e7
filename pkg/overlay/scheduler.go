package overlay

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"

	"github.com/chazu/vitrine/pkg/spatial"
)

// VisibleNode pairs a snapshot with the detail tier the rendering layer
// is asked to draw it at.
type VisibleNode struct {
	Snapshot *NodeSnapshot `json:"snapshot"`
	LOD      LODTier       `json:"lod"`
}

// Frame is one complete publication to the rendering layer: the overlay
// transform plus the visible snapshots in engine insertion order. Culled
// nodes are absent entirely, not merely flagged hidden.
type Frame struct {
	Seq       uint64        `json:"seq"`
	Transform Transform     `json:"transform"`
	CSS       string        `json:"css"`
	Nodes     []VisibleNode `json:"nodes"`
}

// DefaultKickInterval coalesces invalidations to roughly one kick per
// display refresh.
const DefaultKickInterval = 16 * time.Millisecond

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the structured logger used for warnings.
func WithLogger(log *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.log = log }
}

// WithViewport sets the pixel viewport the selector culls against.
func WithViewport(w, h float64) SchedulerOption {
	return func(s *Scheduler) { s.selector.SetViewport(w, h) }
}

// WithMarginBase sets the base margin fraction for cull prefetch.
func WithMarginBase(f float64) SchedulerOption {
	return func(s *Scheduler) { s.selector.marginBase = f }
}

// WithMinPixelSize sets the on-screen size below which nodes are culled.
func WithMinPixelSize(px float64) SchedulerOption {
	return func(s *Scheduler) { s.selector.minPixel = px }
}

// WithPublisher registers the sink that receives each published frame.
func WithPublisher(fn func(Frame)) SchedulerOption {
	return func(s *Scheduler) { s.publish = fn }
}

// WithKick registers the host callback asking for a Tick on the next
// display refresh. Multiple invalidations within the kick interval
// collapse into one call.
func WithKick(fn func()) SchedulerOption {
	return func(s *Scheduler) { s.kick = fn }
}

// WithKickInterval overrides the invalidation coalescing window.
func WithKickInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.kickEvery = d }
}

// WithIndexOptions forwards options to the spatial index.
func WithIndexOptions(opts ...spatial.Option) SchedulerOption {
	return func(s *Scheduler) { s.indexOpts = opts }
}

// Scheduler owns the whole overlay pipeline and runs it at a single
// per-frame checkpoint. The order inside Tick is fixed (transform mirror,
// dirty detection, index updates, visibility selection, publish) because
// each step assumes the previous one completed (culling assumes this
// tick's bounds, publication assumes this tick's visibility).
//
// Tick must be driven from one goroutine; Invalidate is safe from any.
type Scheduler struct {
	auth     Authority
	bridge   *Bridge
	mirror   *Mirror
	selector *Selector
	index    *spatial.Tree
	log      *slog.Logger

	publish   func(Frame)
	kick      func()
	kickEvery time.Duration
	debounced func(func())
	indexOpts []spatial.Option

	pending atomic.Bool
	closed  atomic.Bool
	seq     uint64
}

// NewScheduler builds the pipeline around an authority: spatial index,
// lifecycle bridge, transform mirror, and selector, wired in that order.
func NewScheduler(auth Authority, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		auth:      auth,
		selector:  NewSelector(800, 600),
		kickEvery: DefaultKickInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.index = spatial.NewTree(s.indexOpts...)
	s.bridge = NewBridge(auth, s.index, s.log)
	s.mirror = NewMirror(s.log)
	s.debounced = debounce.New(s.kickEvery)
	return s
}

// Bridge exposes the lifecycle bridge (edits, snapshots, visibility).
func (s *Scheduler) Bridge() *Bridge { return s.bridge }

// Index exposes the spatial index, mainly for tests and diagnostics.
func (s *Scheduler) Index() *spatial.Tree { return s.index }

// Invalidate marks the pipeline dirty. Any number of invalidations within
// one kick interval collapse into a single host kick; the host then calls
// Tick once on its next frame.
func (s *Scheduler) Invalidate() {
	if s.closed.Load() {
		return
	}
	s.pending.Store(true)
	if s.kick != nil {
		s.debounced(func() {
			if !s.closed.Load() {
				s.kick()
			}
		})
	}
}

// Pending reports whether work is waiting for the next Tick.
func (s *Scheduler) Pending() bool { return s.pending.Load() }

// Tick runs one frame of the pipeline in the fixed order and returns the
// published frame. Ticking with nothing pending is valid and republishes
// current state; across ticks the rendering layer always observes a fully
// settled frame, never a partial update.
func (s *Scheduler) Tick() Frame {
	s.pending.Store(false)

	// 1. Transform mirror.
	tr, _ := s.mirror.Update(s.auth.Camera())

	// 2. Dirty detection, 3. index updates for dirty bounds.
	for _, id := range s.bridge.DetectDirty() {
		if snap := s.bridge.Snapshot(id); snap != nil {
			s.index.Update(string(id), snap.Bounds())
		}
	}

	// 4. Visibility and LOD.
	visible := s.selector.Select(tr, s.index, s.bridge)

	// 5. Publish, preserving engine insertion order.
	s.seq++
	frame := Frame{Seq: s.seq, Transform: tr, CSS: tr.CSSMatrix()}
	for _, n := range s.auth.Nodes() {
		if !visible[n.ID] {
			continue
		}
		v := s.bridge.Visibility(n.ID)
		frame.Nodes = append(frame.Nodes, VisibleNode{
			Snapshot: s.bridge.Snapshot(n.ID),
			LOD:      v.LOD,
		})
	}
	if s.publish != nil {
		s.publish(frame)
	}
	return frame
}

// SetViewport resizes the cull viewport (e.g. on window resize) and marks
// the pipeline dirty.
func (s *Scheduler) SetViewport(w, h float64) {
	s.selector.SetViewport(w, h)
	s.Invalidate()
}

// Close tears the pipeline down: pending kicks are suppressed, the bridge
// unsubscribes from the authority, and every derived store is cleared.
func (s *Scheduler) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.bridge.Close()
}
