package config

// Secret is an optional secret string. The zero value is an absent secret.
type Secret struct {
	value string
	set   bool
}

// NewSecret returns a present secret. An empty string yields an absent secret,
// matching how the loader treats empty environment entries.
func NewSecret(value string) Secret {
	if value == "" {
		return Secret{}
	}
	return Secret{value: value, set: true}
}

// Get returns the secret and whether it is present.
func (s Secret) Get() (string, bool) {
	return s.value, s.set
}

// Present reports whether the secret was configured.
func (s Secret) Present() bool {
	return s.set
}

// String masks the value so secrets never reach logs.
func (s Secret) String() string {
	if !s.set {
		return "<unset>"
	}
	if len(s.value) <= 8 {
		return "****"
	}
	return s.value[:4] + "****"
}

// Credentials is the pair of secrets read at startup.
type Credentials struct {
	// Telemetry enables request tracing when present.
	Telemetry Secret
	// Provider authorizes calls to the text-generation API.
	Provider Secret
}
