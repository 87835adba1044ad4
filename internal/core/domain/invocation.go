package domain

import "time"

// InvocationStatus is the outcome of a recorded invocation.
type InvocationStatus string

const (
	InvocationSucceeded InvocationStatus = "succeeded"
	InvocationFailed    InvocationStatus = "failed"
)

// Invocation is one recorded run of the plugin against a project.
type Invocation struct {
	ID        string           `json:"id"`
	Command   Command          `json:"command"`
	RootDir   string           `json:"root_dir"`
	Status    InvocationStatus `json:"status"`
	Error     string           `json:"error,omitempty"`
	Duration  time.Duration    `json:"duration_ns"`
	CreatedAt time.Time        `json:"created_at"`

	// OriginalConfig is the user configuration as loaded; Config is the
	// normalized configuration after the plugin ran.
	OriginalConfig map[string]any `json:"original_config,omitempty"`
	Config         map[string]any `json:"config,omitempty"`

	// Values are the host values plugins published, such as feature
	// flags and the test runner configuration.
	Values map[string]any `json:"values,omitempty"`

	Tasks []Task `json:"tasks,omitempty"`
}

// InvocationSummary is the list view of an invocation.
type InvocationSummary struct {
	ID        string           `json:"id"`
	Command   Command          `json:"command"`
	RootDir   string           `json:"root_dir"`
	Status    InvocationStatus `json:"status"`
	Tasks     int              `json:"tasks"`
	Duration  time.Duration    `json:"duration_ns"`
	CreatedAt time.Time        `json:"created_at"`
}
