package snowflake

import (
	"fmt"
	"time"

	sf "github.com/bwmarrin/snowflake"
)

var node *sf.Node

// Init sets the epoch (YYYY-MM-DD) and the node id of this instance.
// Every running replica needs its own machineID.
func Init(startTime string, machineID int64) error {
	st, err := time.Parse(time.DateOnly, startTime)
	if err != nil {
		return fmt.Errorf("parse snowflake start_time: %w", err)
	}
	sf.Epoch = st.UnixMilli()

	n, err := sf.NewNode(machineID)
	if err != nil {
		return fmt.Errorf("create snowflake node: %w", err)
	}
	node = n
	return nil
}

// GenID returns the next id. Ids grow with time, so ordering by id
// agrees with ordering by creation.
func GenID() int64 {
	return node.Generate().Int64()
}
