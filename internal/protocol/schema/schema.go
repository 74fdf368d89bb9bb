package schema

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// MaxPLMN is the TS 38.331 maxPLMN multiplicity.
const MaxPLMN = 12

// IntRange is an INTEGER (Lower..Upper) constraint.
type IntRange struct {
	Lower int64 `toml:"lower"`
	Upper int64 `toml:"upper"`
}

// SizeRange is a SIZE (Lower..Upper) constraint. Upper < 0 means no upper bound.
type SizeRange struct {
	Lower int `toml:"lower"`
	Upper int `toml:"upper"`
}

func (s SizeRange) Bounded() bool { return s.Upper >= 0 }

// Choice describes a CHOICE by its root alternative count and the index of
// the one alternative this model populates.
type Choice struct {
	Alternatives int `toml:"alternatives"`
	Index        int `toml:"index"`
}

// Schema holds every PER-visible bound the SIB1 codec depends on.
type Schema struct {
	MessageType          Choice    `toml:"message_type"`
	C1                   Choice    `toml:"c1"`
	QRxLevMin            IntRange  `toml:"q_rxlevmin"`
	PLMNIdentityInfoList SizeRange `toml:"plmn_identity_info_list"`
	PLMNIdentityList     SizeRange `toml:"plmn_identity_list"`
	MCC                  SizeRange `toml:"mcc"`
	MNC                  SizeRange `toml:"mnc"`
	Digit                IntRange  `toml:"digit"`
}

// Default returns the TS 38.331 bounds:
//
//	BCCH-DL-SCH-MessageType ::= CHOICE { c1 CHOICE { systemInformation, systemInformationBlockType1 }, messageClassExtension }
//	Q-RxLevMin ::= INTEGER (-70..-22)
//	PLMN-IdentityInfoList ::= SEQUENCE (SIZE (1..maxPLMN)) OF PLMN-IdentityInfo
//	MCC ::= SEQUENCE (SIZE (3)) OF MCC-MNC-Digit
//	MNC ::= SEQUENCE (SIZE (2..3)) OF MCC-MNC-Digit
//	MCC-MNC-Digit ::= INTEGER (0..9)
func Default() Schema {
	return Schema{
		MessageType:          Choice{Alternatives: 2, Index: 0},
		C1:                   Choice{Alternatives: 2, Index: 1},
		QRxLevMin:            IntRange{Lower: -70, Upper: -22},
		PLMNIdentityInfoList: SizeRange{Lower: 1, Upper: MaxPLMN},
		PLMNIdentityList:     SizeRange{Lower: 1, Upper: MaxPLMN},
		MCC:                  SizeRange{Lower: 3, Upper: 3},
		MNC:                  SizeRange{Lower: 2, Upper: 3},
		Digit:                IntRange{Lower: 0, Upper: 9},
	}
}

// Minimal returns Default with single-alternative choices, so the envelope
// contributes no selector bits.
func Minimal() Schema {
	s := Default()
	s.MessageType = Choice{Alternatives: 1, Index: 0}
	s.C1 = Choice{Alternatives: 1, Index: 0}
	return s
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("schema: %s: %s", e.Field, e.Reason)
}

// Validate rejects bounds the codec cannot encode against. Overrides may
// narrow the defaults but never admit an empty list or a non-decimal digit.
func (s Schema) Validate() error {
	log.Debug().Msg("schema.Validate")
	checks := []func() error{
		func() error { return validateChoice("message_type", s.MessageType) },
		func() error { return validateChoice("c1", s.C1) },
		func() error { return validateInt("q_rxlevmin", s.QRxLevMin) },
		func() error { return validateSize("plmn_identity_info_list", s.PLMNIdentityInfoList) },
		func() error { return validateSize("plmn_identity_list", s.PLMNIdentityList) },
		func() error { return validateSize("mcc", s.MCC) },
		func() error { return validateSize("mnc", s.MNC) },
		func() error { return validateInt("digit", s.Digit) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			log.Error().Err(err).Msg("schema.Validate failed")
			return err
		}
	}
	if s.Digit.Lower < 0 || s.Digit.Upper > 9 {
		return ValidationError{Field: "digit", Reason: fmt.Sprintf("range %d..%d outside 0..9", s.Digit.Lower, s.Digit.Upper)}
	}
	return nil
}

func validateChoice(field string, c Choice) error {
	if c.Alternatives < 1 {
		return ValidationError{Field: field, Reason: "choice needs at least one alternative"}
	}
	if c.Index < 0 || c.Index >= c.Alternatives {
		return ValidationError{Field: field, Reason: fmt.Sprintf("index %d outside %d alternatives", c.Index, c.Alternatives)}
	}
	return nil
}

func validateInt(field string, r IntRange) error {
	if r.Lower > r.Upper {
		return ValidationError{Field: field, Reason: fmt.Sprintf("inverted range %d..%d", r.Lower, r.Upper)}
	}
	return nil
}

// validateSize requires at least one element: every list and digit string
// in SIB1 is non-empty.
func validateSize(field string, r SizeRange) error {
	if r.Lower < 1 {
		return ValidationError{Field: field, Reason: fmt.Sprintf("lower size %d below 1", r.Lower)}
	}
	if r.Bounded() && r.Lower > r.Upper {
		return ValidationError{Field: field, Reason: fmt.Sprintf("inverted size %d..%d", r.Lower, r.Upper)}
	}
	return nil
}
