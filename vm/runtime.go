package vm

import (
	"minijvm/classloader"
	"minijvm/heap"
	"minijvm/internal/vmconfig"
	"minijvm/internal/vmlog"
)

// Runtime owns every piece of mutable state: the frame stack, the heap, the
// loader cache, and the string pool. It is not reentrant: native calls
// receive the Runtime and may synchronously touch heap/string-pool state,
// but must not push frames.
type Runtime struct {
	Heap       *heap.Heap
	Loader     *classloader.Loader
	StringPool map[string]heap.Ref
	Frames     []*Frame
	Config     vmconfig.Config
	Log        *vmlog.Logger
}

// New builds a Runtime from resolved configuration.
func New(cfg vmconfig.Config, log *vmlog.Logger) *Runtime {
	return &Runtime{
		Heap:       heap.New(),
		Loader:     classloader.New(cfg.Classpath),
		StringPool: make(map[string]heap.Ref),
		Config:     cfg,
		Log:        log,
	}
}

// PushFrame puts f on top of the frame stack.
func (rt *Runtime) PushFrame(f *Frame) {
	rt.Frames = append(rt.Frames, f)
}

// PopFrame removes and returns the top frame.
func (rt *Runtime) PopFrame() *Frame {
	n := len(rt.Frames) - 1
	f := rt.Frames[n]
	rt.Frames = rt.Frames[:n]
	return f
}

// TopFrame returns the top frame without removing it.
func (rt *Runtime) TopFrame() *Frame {
	return rt.Frames[len(rt.Frames)-1]
}

// CallerFrame returns the frame directly below the top one, i.e. the frame
// that will become current once the top frame returns.
func (rt *Runtime) CallerFrame() *Frame {
	return rt.Frames[len(rt.Frames)-2]
}

func (rt *Runtime) Empty() bool {
	return len(rt.Frames) == 0
}
