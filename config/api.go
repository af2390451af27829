package config

// APIConfig defines the HTTP API listener.
type APIConfig struct {
	// Addr is the listen address of the API server.
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on the logs endpoint.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
