// Package serial issues the card serial numbers shared with the wallet provider.
package serial

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out unique, roughly time-ordered card serials
type Generator struct {
	node *snowflake.Node
}

// NewGenerator creates a generator for the given node (0..1023).
// Each running instance needs its own node id.
func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("serial node %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// Next returns a fresh serial
func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}
