package lzacdkutil

import "slices"

// Partition identifiers the accelerator can target.
const (
	PartitionCommercial = "aws"
	PartitionGovCloud   = "aws-us-gov"
	PartitionChina      = "aws-cn"
)

// partitionCapabilities records which managed services exist per partition.
type partitionCapabilities struct {
	pipelineNotifications bool
}

var partitions = map[string]partitionCapabilities{
	PartitionCommercial: {pipelineNotifications: true},
	PartitionGovCloud:   {pipelineNotifications: false},
	PartitionChina:      {pipelineNotifications: false},
}

// IsKnownPartition returns true if the partition is supported.
func IsKnownPartition(partition string) bool {
	_, ok := partitions[partition]
	return ok
}

// PartitionSupportsNotifications reports whether the pipeline notification
// service is available in the partition. It panics for unknown partitions;
// use IsKnownPartition to check first if needed.
func PartitionSupportsNotifications(partition string) bool {
	caps, ok := partitions[partition]
	if !ok {
		panic("unknown partition: " + partition)
	}
	return caps.pipelineNotifications
}

// AllKnownPartitions returns a sorted slice of all supported partitions.
func AllKnownPartitions() []string {
	all := make([]string, 0, len(partitions))
	for partition := range partitions {
		all = append(all, partition)
	}
	slices.Sort(all)
	return all
}
