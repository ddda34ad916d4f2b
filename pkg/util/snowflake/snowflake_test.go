package snowflake

import (
	"testing"

	"github.com/bwmarrin/snowflake"
)

func TestNextIDIncreases(t *testing.T) {
	Init(7)
	prev, err := snowflake.ParseString(NextID())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if prev.Node() != 7 {
		t.Fatalf("node = %d", prev.Node())
	}
	for i := 0; i < 1000; i++ {
		next, _ := snowflake.ParseString(NextID())
		if next <= prev {
			t.Fatalf("id %d not greater than %d", next, prev)
		}
		prev = next
	}
}
