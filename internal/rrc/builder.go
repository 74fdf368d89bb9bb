package rrc

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDigit = errors.New("rrc: invalid digit")
	ErrEmptyPLMN    = errors.New("rrc: plmn identity info has no identities")
)

// BuildError reports the first step that failed while building a tree.
type BuildError struct {
	Step string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("rrc: build %s: %v", e.Step, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// PLMNSpec is one PLMN identity in decimal form. An empty MCC leaves the
// optional field absent.
type PLMNSpec struct {
	MCC string
	MNC string
}

// Plan is the literal input set a SIB1 tree is built from.
type Plan struct {
	QRxLevMin *int64
	PLMNInfos [][]PLMNSpec
}

// SamplePlan returns the reference broadcast: q-RxLevMin -70, PLMN 310/260.
func SamplePlan() Plan {
	q := int64(-70)
	return Plan{
		QRxLevMin: &q,
		PLMNInfos: [][]PLMNSpec{{{MCC: "310", MNC: "260"}}},
	}
}

// Builder accumulates a SIB1 tree. After the first failure every further
// call is a no-op and Build reports that failure.
type Builder struct {
	sib1 SIB1
	err  error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// CellSelection populates the optional cellSelectionInfo.
func (b *Builder) CellSelection(qRxLevMin int64) *Builder {
	if b.err != nil {
		return b
	}
	b.sib1.CellSelectionInfo = &CellSelectionInfo{QRxLevMin: qRxLevMin}
	return b
}

// AddPLMNInfo appends one PLMN-IdentityInfo holding ids in order.
func (b *Builder) AddPLMNInfo(ids ...PLMNSpec) *Builder {
	if b.err != nil {
		return b
	}
	step := fmt.Sprintf("plmn-IdentityInfoList[%d]", len(b.sib1.CellAccessRelatedInfo.PLMNIdentityInfoList))
	if len(ids) == 0 {
		b.err = &BuildError{Step: step, Err: ErrEmptyPLMN}
		return b
	}
	info := PLMNIdentityInfo{PLMNIdentityList: make([]PLMNIdentity, 0, len(ids))}
	for i, id := range ids {
		idStep := fmt.Sprintf("%s.plmn-IdentityList[%d]", step, i)
		var mcc MCC
		if id.MCC != "" {
			digits, err := ParseDigits(id.MCC)
			if err != nil {
				b.err = &BuildError{Step: idStep + ".mcc", Err: err}
				return b
			}
			mcc = MCC(digits)
		}
		mnc, err := ParseDigits(id.MNC)
		if err != nil {
			b.err = &BuildError{Step: idStep + ".mnc", Err: err}
			return b
		}
		info.PLMNIdentityList = append(info.PLMNIdentityList, PLMNIdentity{MCC: mcc, MNC: MNC(mnc)})
	}
	b.sib1.CellAccessRelatedInfo.PLMNIdentityInfoList = append(b.sib1.CellAccessRelatedInfo.PLMNIdentityInfoList, info)
	return b
}

// Build links the accumulated SIB1 under c1 and the message envelope.
// List sizes are left to the encoder, which owns the schema bounds.
func (b *Builder) Build() (*Message, error) {
	if b.err != nil {
		return nil, b.err
	}
	sib1 := b.sib1
	return &Message{
		Message: MessageType{
			Choice: MessageTypeChoiceC1,
			C1: &C1{
				Choice:                      C1ChoiceSystemInformationBlockType1,
				SystemInformationBlockType1: &sib1,
			},
		},
	}, nil
}

// BuildPlan builds the tree described by p.
func BuildPlan(p Plan) (*Message, error) {
	b := NewBuilder()
	if p.QRxLevMin != nil {
		b.CellSelection(*p.QRxLevMin)
	}
	for _, ids := range p.PLMNInfos {
		b.AddPLMNInfo(ids...)
	}
	return b.Build()
}

// ParseDigits converts a decimal string into digits, preserving order.
// An empty string yields an empty, non-nil list.
func ParseDigits(s string) ([]Digit, error) {
	out := make([]Digit, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidDigit, c, i)
		}
		out = append(out, Digit(c-'0'))
	}
	return out, nil
}
