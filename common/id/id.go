package id

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

func init() {
	nodeID := int64(1)
	if raw := os.Getenv("SNOWFLAKE_NODE_ID"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			nodeID = parsed
		}
	}

	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		panic("id: invalid snowflake node id: " + err.Error())
	}
	node = n
}

// New returns a time-ordered unique int64. Used for audit events, where
// insertion order matters and rows are never updated.
func New() int64 {
	return node.Generate().Int64()
}
