package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T(MsgNumberMax, map[string]string{"max": "30"}); msg != "Expected value to be less than or equal to 30" {
		t.Fatalf("unexpected english message %q", msg)
	}

	SetLanguage("ja")
	if msg := T(MsgInvalidType, map[string]string{"expected": "string", "received": "number"}); msg == "Expected string, received number" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// unknown languages fall back to en
	SetLanguage("xx")
	if msg := T(MsgArrayNoEmpty, nil); msg != "Expected array to be non-empty" {
		t.Fatalf("expected english fallback, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

type upper struct{}

func (upper) Message(id string, _ map[string]string) string { return "X:" + id }

func TestSetTranslator_CustomAndReset(t *testing.T) {
	SetTranslator(upper{})
	if msg := T(MsgCustom, nil); msg != "X:custom" {
		t.Fatalf("custom translator not used: %q", msg)
	}
	SetTranslator(nil)
	if msg := T("no.such.id", nil); msg != "no.such.id" {
		t.Fatalf("unknown ids should echo, got %q", msg)
	}
}
