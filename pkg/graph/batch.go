package graph

import (
	"fmt"
	"sync"

	"github.com/aretw0/grbflow/pkg/domain"
)

// Batch collects nodes built off the main graph so independent sections can be
// constructed concurrently. Committing batches in a fixed order keeps the node
// order identical to a sequential build.
type Batch struct {
	mu    sync.Mutex
	nodes []*domain.JobNode
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Append records the node. IDs are assigned when the batch is committed.
func (b *Batch) Append(n *domain.JobNode) (*domain.JobNode, error) {
	if n == nil {
		return nil, fmt.Errorf("cannot append nil node")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nodes = append(b.nodes, n)
	return n, nil
}

// Nodes returns the recorded nodes in append order.
func (b *Batch) Nodes() []*domain.JobNode {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*domain.JobNode, len(b.nodes))
	copy(out, b.nodes)
	return out
}
