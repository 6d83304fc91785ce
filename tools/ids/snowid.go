package ids

import (
	"strconv"
	"sync"
	"time"
)

// Snowflake layout: 41 bits of milliseconds since epoch, nodeBits of node id,
// seqBits of per-millisecond sequence. Ids stay sortable by mint time, which
// keeps chat and message ids cheap to order.
const (
	nodeBits = 10
	seqBits  = 12

	maxNode = 1<<nodeBits - 1
	seqMask = 1<<seqBits - 1
	tsMask  = 1<<41 - 1

	nodeShift = seqBits
	tsShift   = nodeBits + seqBits
)

var epochMS = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

var state struct {
	mu     sync.Mutex
	node   int64
	seq    int64
	lastMS int64
}

func init() {
	state.node = 1
}

// SetNodeID sets the node part (0..1023); call once from main before serving.
func SetNodeID(node int64) {
	state.mu.Lock()
	defer state.mu.Unlock()
	if node < 0 || node > maxNode {
		node = 1
	}
	state.node = node
}

func Generate() int64 {
	state.mu.Lock()
	defer state.mu.Unlock()

	now := time.Now().UnixMilli()
	for now < state.lastMS {
		// Clock went backwards, wait it out.
		time.Sleep(time.Duration(state.lastMS-now) * time.Millisecond)
		now = time.Now().UnixMilli()
	}

	if now == state.lastMS {
		state.seq = (state.seq + 1) & seqMask
		if state.seq == 0 {
			// Sequence exhausted within this millisecond, spin to the next.
			for now <= state.lastMS {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		state.seq = 0
	}
	state.lastMS = now

	ts := (now - epochMS) & tsMask
	return ts<<tsShift | state.node<<nodeShift | state.seq
}

func GenerateString() string {
	return strconv.FormatInt(Generate(), 10)
}
