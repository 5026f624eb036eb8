package device

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
)

// ResultClass groups driver results by how the resource layer reacts to them
type ResultClass int

const (
	// ClassSuccess covers VKSuccess and the non-error status codes
	ClassSuccess ResultClass = iota
	// ClassDevice covers out-of-memory and pool exhaustion. These are fatal for the allocation
	// attempt and are propagated rather than retried.
	ClassDevice
	// ClassSync covers fence timeouts and device loss. These are treated as fatal device loss.
	ClassSync
	// ClassOther covers any other failure
	ClassOther
)

var resultClassNames = map[ResultClass]string{
	ClassSuccess: "Success",
	ClassDevice:  "Device",
	ClassSync:    "Sync",
	ClassOther:   "Other",
}

func (c ResultClass) String() string {
	return resultClassNames[c]
}

// Classify sorts a driver result into a ResultClass
func Classify(res common.VkResult) ResultClass {
	switch res {
	case core1_0.VKSuccess, core1_0.VKNotReady, core1_0.VKIncomplete:
		return ClassSuccess
	case core1_0.VKErrorOutOfDeviceMemory, core1_0.VKErrorOutOfHostMemory,
		core1_0.VKErrorFragmentedPool, core1_1.VkErrorOutOfPoolMemory,
		core1_0.VKErrorTooManyObjects:
		return ClassDevice
	case core1_0.VKTimeout, core1_0.VKErrorDeviceLost:
		return ClassSync
	}

	if res < 0 {
		return ClassOther
	}
	return ClassSuccess
}

// IsPoolExhausted reports whether res indicates that a descriptor pool could not satisfy an
// allocation and a new pool should be created
func IsPoolExhausted(res common.VkResult) bool {
	return res == core1_0.VKErrorFragmentedPool || res == core1_1.VkErrorOutOfPoolMemory
}

// ErrDeviceLost marks errors produced by a device that stopped responding, including fence
// waits that exceeded their bound
var ErrDeviceLost = errors.New("device lost")

// ResultError converts a failed result into an error, marking sync-class failures with
// ErrDeviceLost. It returns nil for success results.
func ResultError(res common.VkResult) error {
	class := Classify(res)
	if class == ClassSuccess {
		return nil
	}

	err := res.ToError()
	if err == nil {
		// VKTimeout is a status code rather than an error code
		err = errors.Newf("operation returned %v", res)
	}
	if class == ClassSync {
		return errors.Mark(err, ErrDeviceLost)
	}
	return err
}
