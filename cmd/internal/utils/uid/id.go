package uid

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/gommon/log"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init must be called once at startup; later calls are no-ops.
func Init(machineID int64) {
	once.Do(func() {
		var err error
		node, err = snowflake.NewNode(machineID)
		if err != nil {
			log.Fatalf("failed to initialize snowflake node: %v", err)
		}
	})
}

// Generate returns a new snowflake as its decimal string form. Strings are
// used on the wire so JavaScript clients do not lose precision.
func Generate() string {
	if node == nil {
		// Tests and tools that never called Init still get unique ids.
		Init(1)
	}
	return node.Generate().String()
}
