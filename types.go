package neurite

import "github.com/jshaw/neurite/internal/morph"

// Public type aliases for the internal morphology model. These are Go type
// aliases (=) — identical to the internal types at compile time. External
// consumers use these names; no conversion is needed.

type Morphology = morph.Morphology
type Arbor = morph.Arbor
type Section = morph.Section
type SectionRecord = morph.SectionRecord
type Sample = morph.Sample
type SampleType = morph.SampleType
type Soma = morph.Soma

const (
	SomaSample           = morph.SomaSample
	AxonSample           = morph.AxonSample
	BasalDendriteSample  = morph.BasalDendriteSample
	ApicalDendriteSample = morph.ApicalDendriteSample
)

// BuildArbor links flat section records into a rooted arbor tree. See
// morph.BuildArbor for the failure contract.
func BuildArbor(label string, records []SectionRecord) (*Arbor, error) {
	return morph.BuildArbor(label, records)
}

// Validate checks the structural preconditions Repair assumes.
func Validate(m *Morphology) error {
	return morph.Validate(m)
}
