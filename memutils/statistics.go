package memutils

import "math"

// Statistics summarizes the occupancy of one or more megabuffers
type Statistics struct {
	BufferCount   int
	RegionCount   int
	CapacityBytes int
	RegionBytes   int
}

func (s *Statistics) Clear() {
	s.BufferCount = 0
	s.RegionCount = 0
	s.CapacityBytes = 0
	s.RegionBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BufferCount += other.BufferCount
	s.RegionCount += other.RegionCount
	s.CapacityBytes += other.CapacityBytes
	s.RegionBytes += other.RegionBytes
}

// FreeBytes is the number of bytes not leased to any region
func (s *Statistics) FreeBytes() int {
	return s.CapacityBytes - s.RegionBytes
}

type DetailedStatistics struct {
	Statistics
	FreeRangeCount   int
	RegionSizeMin    int
	RegionSizeMax    int
	FreeRangeSizeMin int
	FreeRangeSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.FreeRangeCount = 0
	s.RegionSizeMin = math.MaxInt
	s.RegionSizeMax = 0
	s.FreeRangeSizeMin = math.MaxInt
	s.FreeRangeSizeMax = 0
}

func (s *DetailedStatistics) AddFreeRange(size int) {
	s.FreeRangeCount++

	if size < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = size
	}

	if size > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = size
	}
}

func (s *DetailedStatistics) AddRegion(size int) {
	s.RegionCount++
	s.RegionBytes += size

	if size < s.RegionSizeMin {
		s.RegionSizeMin = size
	}

	if size > s.RegionSizeMax {
		s.RegionSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.FreeRangeCount += other.FreeRangeCount

	if other.FreeRangeSizeMin < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = other.FreeRangeSizeMin
	}

	if other.FreeRangeSizeMax > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = other.FreeRangeSizeMax
	}

	if other.RegionSizeMin < s.RegionSizeMin {
		s.RegionSizeMin = other.RegionSizeMin
	}

	if other.RegionSizeMax > s.RegionSizeMax {
		s.RegionSizeMax = other.RegionSizeMax
	}
}

// LargestFreeRange returns the size of the largest free range, or 0 if there is none
func (s *DetailedStatistics) LargestFreeRange() int {
	if s.FreeRangeCount == 0 {
		return 0
	}
	return s.FreeRangeSizeMax
}
