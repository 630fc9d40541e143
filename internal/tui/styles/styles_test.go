package styles

import "testing"

func TestStatusColor(t *testing.T) {
	if got := StatusColor(true); string(got) != "#10B981" {
		t.Errorf("StatusColor(true) = %q", got)
	}
	if got := StatusColor(false); string(got) != "#9CA3AF" {
		t.Errorf("StatusColor(false) = %q", got)
	}
}

func TestStatusIcon(t *testing.T) {
	if StatusIcon(true) != "✓" || StatusIcon(false) != "○" {
		t.Errorf("StatusIcon = %q/%q", StatusIcon(true), StatusIcon(false))
	}
}

func TestCheckBox(t *testing.T) {
	if CheckBox(true) != "[x]" || CheckBox(false) != "[ ]" {
		t.Errorf("CheckBox = %q/%q", CheckBox(true), CheckBox(false))
	}
}
