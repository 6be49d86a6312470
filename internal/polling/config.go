package polling

import "time"

const (
	DefaultTimeout  = 5 * time.Second
	DefaultInterval = 100 * time.Millisecond
)

// Policy bounds how long a condition is waited for and how often it is
// re-checked.
type Policy struct {
	Timeout  time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty" json:"interval,omitempty"`
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{Timeout: DefaultTimeout, Interval: DefaultInterval}
}

// Or fills zero fields of p from fallback.
func (p Policy) Or(fallback Policy) Policy {
	if p.Timeout <= 0 {
		p.Timeout = fallback.Timeout
	}
	if p.Interval <= 0 {
		p.Interval = fallback.Interval
	}
	return p
}
