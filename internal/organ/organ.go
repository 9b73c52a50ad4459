// Package organ implements Aura's sensory organs. Every organ wraps one
// external capability behind the same contract: perceive an input under a
// persona, get a structured Perception back. Failures are data; nothing
// past an organ boundary panics or returns a bare error to the caller.
package organ

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/auralabs/aura/internal/persona"
)

// ID identifies a sense.
type ID string

const (
	Vision   ID = "vision"
	Hearing  ID = "hearing"
	Document ID = "document"
	Screen   ID = "screen"
)

// Stage labels for deep perception sequences.
const (
	StageInitial        = "initial_perception"
	stageFollowUpFormat = "follow_up_%d"
)

// ErrorKind classifies why a perception failed.
type ErrorKind string

const (
	// ErrNotAvailable: the organ's capability was never initialized.
	// Permanent for the process lifetime.
	ErrNotAvailable ErrorKind = "not_available"
	// ErrInputMissing: the caller-supplied resource does not exist or
	// cannot be read.
	ErrInputMissing ErrorKind = "input_missing"
	// ErrCaptureFailed: a capture subprocess errored, timed out, or
	// produced no artifact.
	ErrCaptureFailed ErrorKind = "capture_failed"
	// ErrInferenceFailed: the inference call errored, timed out, or
	// returned no usable content.
	ErrInferenceFailed ErrorKind = "inference_failed"
	// ErrCache: non-fatal; a cache problem downgraded to a miss.
	ErrCache ErrorKind = "cache_error"
)

// Perception is the immutable result of one perceive call.
type Perception struct {
	ID             string          `json:"id"`
	Success        bool            `json:"success"`
	Organ          ID              `json:"organ"`
	Persona        persona.Persona `json:"persona"`
	Interpretation string          `json:"interpretation,omitempty"`
	Input          string          `json:"input,omitempty"`
	Stage          string          `json:"stage,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
	Error          string          `json:"error,omitempty"`
	ErrorKind      ErrorKind       `json:"error_kind,omitempty"`
}

// Organ is the uniform contract every sense implements.
type Organ interface {
	// ID returns the organ's identity.
	ID() ID

	// Available reports whether the organ's capability initialized.
	// Must be fast and side-effect free.
	Available() bool

	// Perceive interprets input under the given persona. An empty
	// question selects the persona-specific default. All failures are
	// returned as a Perception with Success=false.
	Perceive(ctx context.Context, input, question string, who persona.Persona) Perception
}

// success builds a successful perception.
func success(o ID, who persona.Persona, input, interpretation string) Perception {
	return Perception{
		ID:             uuid.NewString(),
		Success:        true,
		Organ:          o,
		Persona:        who,
		Interpretation: interpretation,
		Input:          input,
		Timestamp:      time.Now(),
	}
}

// failure builds a failed perception carrying the error taxonomy.
func failure(o ID, who persona.Persona, input string, kind ErrorKind, format string, args ...interface{}) Perception {
	return Perception{
		ID:        uuid.NewString(),
		Success:   false,
		Organ:     o,
		Persona:   who,
		Input:     input,
		Timestamp: time.Now(),
		Error:     fmt.Sprintf(format, args...),
		ErrorKind: kind,
	}
}

// Unavailable builds a NotAvailable failure on behalf of a caller that
// composes organ results, like the orchestrator's capture paths.
func Unavailable(o ID, who persona.Persona, msg string) Perception {
	return failure(o, who, "", ErrNotAvailable, "%s", msg)
}

// CaptureFailure builds a CaptureFailed failure for a capture step that
// never produced an input for the organ.
func CaptureFailure(o ID, who persona.Persona, msg string) Perception {
	return failure(o, who, "", ErrCaptureFailed, "%s", msg)
}

// DeepPerceive chains perceive calls against the same input: element 0 is
// the baseline (no question), each subsequent element carries one
// follow-up question. Calls are strictly sequential; later questions may
// assume the model has already seen the input once.
func DeepPerceive(ctx context.Context, o Organ, input string, questions []string, who persona.Persona) []Perception {
	results := make([]Perception, 0, len(questions)+1)

	base := o.Perceive(ctx, input, "", who)
	base.Stage = StageInitial
	results = append(results, base)

	for i, q := range questions {
		p := o.Perceive(ctx, input, q, who)
		p.Stage = fmt.Sprintf(stageFollowUpFormat, i+1)
		results = append(results, p)
	}

	return results
}
