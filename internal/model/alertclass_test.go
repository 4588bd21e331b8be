package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestAlertClassJSONRoundTrip(t *testing.T) {
	for _, c := range AllAlertClassesAscending() {
		raw, err := json.Marshal(c)
		if err != nil {
			t.Fatalf("marshal %v: %v", c, err)
		}
		var got AlertClass
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if got != c {
			t.Errorf("round trip %v: got %v", c, got)
		}
	}
}

func TestAlertClassUnmarshalRejectsUnknown(t *testing.T) {
	var c AlertClass
	err := json.Unmarshal([]byte(`"severe"`), &c)
	if !errors.Is(err, ErrPolicyInvalid) {
		t.Fatalf("expected ErrPolicyInvalid, got %v", err)
	}
}

func TestAlertClassUnmarshalRejectsNonString(t *testing.T) {
	var c AlertClass
	err := json.Unmarshal([]byte(`2`), &c)
	if !errors.Is(err, ErrPolicyInvalid) {
		t.Fatalf("expected ErrPolicyInvalid, got %v", err)
	}
}

func TestAlertClassOrdering(t *testing.T) {
	classes := AllAlertClassesAscending()
	for i := 1; i < len(classes); i++ {
		if classes[i] <= classes[i-1] {
			t.Fatalf("classes not strictly ascending at %d: %v <= %v", i, classes[i], classes[i-1])
		}
	}
}
