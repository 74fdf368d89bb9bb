package rrc

// MessageTypeChoice selects the populated alternative of MessageType.
type MessageTypeChoice int

const (
	MessageTypeChoiceNothing MessageTypeChoice = iota
	MessageTypeChoiceC1
)

// C1Choice selects the populated alternative of C1.
type C1Choice int

const (
	C1ChoiceNothing C1Choice = iota
	C1ChoiceSystemInformationBlockType1
)

// Message is the BCCH-DL-SCH-Message envelope.
type Message struct {
	Message MessageType
}

// MessageType is a tagged union; only C1 is modelled.
type MessageType struct {
	Choice MessageTypeChoice
	C1     *C1
}

// C1 is a tagged union; only SystemInformationBlockType1 is modelled.
type C1 struct {
	Choice                      C1Choice
	SystemInformationBlockType1 *SIB1
}

type SIB1 struct {
	CellSelectionInfo     *CellSelectionInfo // optional
	CellAccessRelatedInfo CellAccessRelatedInfo
}

type CellSelectionInfo struct {
	QRxLevMin int64
}

type CellAccessRelatedInfo struct {
	PLMNIdentityInfoList []PLMNIdentityInfo
}

type PLMNIdentityInfo struct {
	PLMNIdentityList []PLMNIdentity
}

// PLMNIdentity carries an optional MCC (nil when absent) and a mandatory MNC.
type PLMNIdentity struct {
	MCC MCC
	MNC MNC
}

// Digit is one MCC-MNC-Digit.
type Digit uint8

type MCC []Digit

type MNC []Digit

// SIB1 returns the SystemInformationBlockType1 payload, or nil when the
// tree does not carry one.
func (m *Message) SIB1() *SIB1 {
	if m == nil || m.Message.Choice != MessageTypeChoiceC1 || m.Message.C1 == nil {
		return nil
	}
	c1 := m.Message.C1
	if c1.Choice != C1ChoiceSystemInformationBlockType1 {
		return nil
	}
	return c1.SystemInformationBlockType1
}

// String renders digits as a decimal string, e.g. "310".
func (d MCC) String() string { return digitString(d) }

func (d MNC) String() string { return digitString(d) }

func digitString(digits []Digit) string {
	buf := make([]byte, 0, len(digits))
	for _, d := range digits {
		if d > 9 {
			buf = append(buf, '?')
			continue
		}
		buf = append(buf, byte('0'+d))
	}
	return string(buf)
}
