package bindless

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
)

// slotTable hands out the indices of one resource kind. Retired indices are reused most recent
// first, and the table only advances into fresh indices when nothing has been retired.
type slotTable struct {
	kind     ResourceKind
	capacity int
	next     uint32
	free     []uint32
	live     *swiss.Map[uint32, struct{}]
}

func newSlotTable(kind ResourceKind, capacity int) *slotTable {
	return &slotTable{
		kind:     kind,
		capacity: capacity,
		live:     swiss.NewMap[uint32, struct{}](64),
	}
}

func (t *slotTable) acquire() (uint32, error) {
	var index uint32
	if len(t.free) > 0 {
		index = t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
	} else if int(t.next) < t.capacity {
		index = t.next
		t.next++
	} else {
		return 0, errors.Wrapf(ErrTableFull, "all %d %s slots are in use", t.capacity, t.kind)
	}

	if t.live.Has(index) {
		panic(errors.AssertionFailedf("%s slot %d was handed out twice", t.kind, index))
	}
	t.live.Put(index, struct{}{})
	return index, nil
}

func (t *slotTable) release(index uint32) error {
	if !t.live.Has(index) {
		return errors.Wrapf(ErrHandleNotLive, "%s slot %d", t.kind, index)
	}

	t.live.Delete(index)
	t.free = append(t.free, index)
	return nil
}

func (t *slotTable) liveCount() int {
	return t.live.Count()
}

// highWater is the number of indices that have ever been handed out
func (t *slotTable) highWater() int {
	return int(t.next)
}
