package rrc

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/sib1ctl/internal/testutil/testlog"
)

func TestBuildPlanSampleLinksFullTree(t *testing.T) {
	testlog.Start(t)
	msg, err := BuildPlan(SamplePlan())
	if err != nil {
		t.Fatalf("build sample: %v", err)
	}
	sib1 := msg.SIB1()
	if sib1 == nil {
		t.Fatalf("expected sib1 under c1")
	}
	if sib1.CellSelectionInfo == nil || sib1.CellSelectionInfo.QRxLevMin != -70 {
		t.Fatalf("unexpected cell selection: %+v", sib1.CellSelectionInfo)
	}
	infos := sib1.CellAccessRelatedInfo.PLMNIdentityInfoList
	if len(infos) != 1 || len(infos[0].PLMNIdentityList) != 1 {
		t.Fatalf("unexpected plmn layout: %+v", infos)
	}
	id := infos[0].PLMNIdentityList[0]
	if id.MCC.String() != "310" || id.MNC.String() != "260" {
		t.Fatalf("unexpected plmn: mcc=%s mnc=%s", id.MCC, id.MNC)
	}
}

func TestBuilderShortCircuitsOnFirstFailure(t *testing.T) {
	testlog.Start(t)
	msg, err := NewBuilder().
		CellSelection(-70).
		AddPLMNInfo(PLMNSpec{MCC: "31x", MNC: "260"}).
		AddPLMNInfo().
		Build()
	if msg != nil {
		t.Fatalf("expected no tree on failure")
	}
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("expected BuildError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidDigit) {
		t.Fatalf("expected ErrInvalidDigit, got %v", err)
	}
	if be.Step != "plmn-IdentityInfoList[0].plmn-IdentityList[0].mcc" {
		t.Fatalf("unexpected step: %q", be.Step)
	}
}

func TestBuilderRejectsInfoWithoutIdentities(t *testing.T) {
	testlog.Start(t)
	_, err := NewBuilder().AddPLMNInfo().Build()
	if !errors.Is(err, ErrEmptyPLMN) {
		t.Fatalf("expected ErrEmptyPLMN, got %v", err)
	}
}

func TestBuilderLeavesMCCAbsentAndKeepsEmptyMNC(t *testing.T) {
	testlog.Start(t)
	msg, err := NewBuilder().AddPLMNInfo(PLMNSpec{MNC: ""}).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	id := msg.SIB1().CellAccessRelatedInfo.PLMNIdentityInfoList[0].PLMNIdentityList[0]
	if id.MCC != nil {
		t.Fatalf("expected absent mcc")
	}
	if id.MNC == nil || len(id.MNC) != 0 {
		t.Fatalf("expected empty non-nil mnc, got %#v", id.MNC)
	}
	if msg.SIB1().CellSelectionInfo != nil {
		t.Fatalf("expected absent cell selection info")
	}
}

func TestParseDigitsPreservesOrder(t *testing.T) {
	testlog.Start(t)
	got, err := ParseDigits("0719")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Digit{0, 7, 1, 9}
	if len(got) != len(want) {
		t.Fatalf("len got=%d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("digit[%d] got=%d want=%d", i, got[i], want[i])
		}
	}
}

func TestDumpRendersTree(t *testing.T) {
	testlog.Start(t)
	msg, err := BuildPlan(SamplePlan())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var buf bytes.Buffer
	if err := Dump(&buf, msg); err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<BCCH-DL-SCH-Message>",
		"<q-RxLevMin>-70</q-RxLevMin>",
		"<mcc>",
		"<MCC-MNC-Digit>3</MCC-MNC-Digit>",
		"</BCCH-DL-SCH-Message>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "<mcc>") > strings.Index(out, "<mnc>") {
		t.Fatalf("mcc must precede mnc")
	}
}
