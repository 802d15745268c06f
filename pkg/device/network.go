package device

import (
	"runtime"
	"sync"
	"time"
)

// Link wires one node: it hears buffer In and plays into buffer Out.
type Link[K comparable] struct {
	In  K
	Out K
}

type NetworkConfig[K comparable] []Link[K]

// Network is a set of fake devices sharing mixing buffers. Every node's
// output is summed, with saturation, into its Out buffer, which all nodes
// listening on that buffer hear one block later.
type Network[K comparable] struct {
	SampleRate float64          // the fake sample rate, 0 means no limit
	BlockSize  int              // 0 means BufferSize
	Config     NetworkConfig[K] // the topology of the network
	LateUpdate func()           // the post process function, runs after each mix

	mu      sync.Mutex
	size    int
	buffers map[K][]int32
	devices []*networkNode[K]
	running bool
	done    chan struct{}
	exit    chan struct{}
}

type networkNode[K comparable] struct {
	*Network[K]
	faultHandler
	input    []int32
	output   []int32
	callback Callback
}

func (n *Network[K]) getBuffer(name K) []int32 {
	buf, ok := n.buffers[name]
	if !ok {
		buf = alloci32(n.size)
		n.buffers[name] = buf
	}
	return buf
}

// Build creates one node per link. Nodes are Devices and FaultReporters.
func (n *Network[K]) Build() []*networkNode[K] {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.size = n.BlockSize
	if n.size == 0 {
		n.size = BufferSize
	}
	n.buffers = make(map[K][]int32)
	n.devices = nil
	for _, link := range n.Config {
		n.devices = append(n.devices, &networkNode[K]{
			Network: n,
			input:   n.getBuffer(link.In),
			output:  alloci32(n.size),
		})
	}
	return n.devices
}

// Devices returns the nodes as Devices.
func (n *Network[K]) Devices() []Device {
	nodes := n.Build()
	devs := make([]Device, len(nodes))
	for i, node := range nodes {
		devs[i] = node
	}
	return devs
}

func (n *Network[K]) update() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, d := range n.devices {
		if d.callback != nil {
			d.callback(d.input, d.output)
		} else {
			cleari32(d.output)
		}
	}

	// clear the buffers
	for _, buf := range n.buffers {
		cleari32(buf)
	}

	// sum up the output of all the devices to the input buffer
	for i, link := range n.Config {
		buf := n.buffers[link.Out]
		sumi32(buf, n.devices[i].output, buf)
	}

	if n.LateUpdate != nil {
		n.LateUpdate()
	}
}

// start launches the pump on the first node start. Callers hold n.mu.
func (n *Network[K]) start() {
	if n.running {
		return
	}
	n.running = true
	n.done = make(chan struct{})
	n.exit = make(chan struct{})
	go n.pump(n.done, n.exit)
}

func (n *Network[K]) pump(done, exit chan struct{}) {
	defer close(exit)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	_ = RaisePriority()

	period := blockPeriod(n.SampleRate, n.size)
	if period == 0 {
		for {
			select {
			case <-done:
				return
			default:
				n.update()
			}
		}
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			n.update()
		}
	}
}

// Stop halts the pump and detaches every node.
func (n *Network[K]) Stop() {
	n.mu.Lock()
	for _, d := range n.devices {
		d.callback = nil
	}
	if !n.running {
		n.mu.Unlock()
		return
	}
	n.running = false
	close(n.done)
	exit := n.exit
	n.mu.Unlock()
	<-exit
}

func (d *networkNode[K]) Start(callback Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.callback != nil {
		return ErrAlreadyStarted
	}
	d.callback = callback
	d.start()
	return nil
}

// Stop detaches the node. The callback is not running when Stop returns.
func (d *networkNode[K]) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.callback == nil {
		return ErrNotStarted
	}
	d.callback = nil
	cleari32(d.output)
	return nil
}
