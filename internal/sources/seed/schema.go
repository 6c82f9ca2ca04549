package seed

// Config represents the top-level structure of the capability seed file
type Config struct {
	Node         NodeProfile       `yaml:"node"`
	Capabilities []CapabilityProps `yaml:"capabilities"`
}

// NodeProfile carries the local node's identity and advertisement defaults.
// Every field is optional; absent values fall back to the runtime config.
type NodeProfile struct {
	ID         string `yaml:"id,omitempty"`
	Name       string `yaml:"name,omitempty"`
	Hops       int    `yaml:"hops,omitempty"`
	DefaultTTL string `yaml:"default_ttl,omitempty"`
}

// CapabilityProps contains one capability advertisement as written in the
// seed file. Durations are strings ("90s", "5m") parsed by the mapper.
type CapabilityProps struct {
	Label              string   `yaml:"label"`
	Description        string   `yaml:"description,omitempty"`
	Keywords           []string `yaml:"keywords,omitempty"`
	ModelTier          string   `yaml:"model_tier,omitempty"`
	EstimatedLatencyMs float64  `yaml:"estimated_latency_ms,omitempty"`
	TokensPerSecond    float64  `yaml:"tokens_per_second,omitempty"`
	HasRag             bool     `yaml:"has_rag,omitempty"`
	HasTools           bool     `yaml:"has_tools,omitempty"`
	HasVision          bool     `yaml:"has_vision,omitempty"`
	Specializations    []string `yaml:"specializations,omitempty"`
	APICostPer1kTokens float64  `yaml:"api_cost_per_1k_tokens,omitempty"`
	TTL                string   `yaml:"ttl,omitempty"`
}
