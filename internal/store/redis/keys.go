package redis

const (
	// KeyPrefixCapability is the prefix for capability record keys
	KeyPrefixCapability = "bearing:capability:"
	// KeyAllCapabilities is the key for the set of all capability IDs
	KeyAllCapabilities = "bearing:capabilities"
	// KeyPrefixCost is the prefix for node cost snapshot keys
	KeyPrefixCost = "bearing:cost:"
	// ChannelCostUpdates is the pub/sub channel for cost snapshot broadcasts
	ChannelCostUpdates = "bearing:updates:cost"
	// KeyPrefixRouteCounter is the prefix for per-capability route counters
	KeyPrefixRouteCounter = "bearing:stats:routes:"
)

// CapabilityKey returns the Redis key for a capability record by ID
func CapabilityKey(id string) string {
	return KeyPrefixCapability + id
}

// AllCapabilitiesKey returns the key for the set of all capability IDs
func AllCapabilitiesKey() string {
	return KeyAllCapabilities
}

// CostKey returns the Redis key for a node's latest cost snapshot
func CostKey(nodeID string) string {
	return KeyPrefixCost + nodeID
}

// RouteCounterKey returns the Redis key for a capability's route counter
func RouteCounterKey(id string) string {
	return KeyPrefixRouteCounter + id
}
