package chainxttest

import (
	"testing"

	"github.com/blockberries/chainxt"
)

func TestMockNode_Compliance(t *testing.T) {
	RunNodeComplianceSuite(t, func(t *testing.T) (chainxt.Node, Producer) {
		node := &MockNode{}
		return node, node
	})
}
