package resource

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		kind    Kind
		wantErr bool
	}{
		{name: "save", input: "save", want: "save", kind: KindSave},
		{name: "delete", input: "delete", want: "delete", kind: KindDelete},
		{name: "detach file", input: "detachFile", want: "detachFile", kind: KindDetachFile},
		{name: "custom", input: "action::publish", want: "action::publish", kind: KindCustom},
		{name: "empty custom", input: "action::", wantErr: true},
		{name: "bare custom name", input: "publish", wantErr: true},
		{name: "custom shadowing save", input: "action::save", wantErr: true},
		{name: "custom shadowing delete", input: "action::delete", wantErr: true},
		{name: "custom shadowing detachFile", input: "action::detachFile", wantErr: true},
		{name: "nested namespace", input: "action::a::b", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAction(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAction(%q) error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("String() = %q, want %q", got.String(), tt.want)
			}
			if got.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", got.Kind(), tt.kind)
			}
		})
	}
}

func TestCustom_RejectsBuiltins(t *testing.T) {
	for _, name := range []string{"save", "delete", "detachFile"} {
		if _, err := Custom(name); err == nil {
			t.Errorf("Custom(%q) should be rejected", name)
		}
	}
}

func TestActionName_Ability(t *testing.T) {
	publish, err := Custom("publish")
	if err != nil {
		t.Fatalf("Custom(publish) error: %v", err)
	}

	tests := []struct {
		name     string
		action   ActionName
		existing bool
		want     string
	}{
		{name: "save new maps to create", action: Save(), existing: false, want: "create"},
		{name: "save existing maps to update", action: Save(), existing: true, want: "update"},
		{name: "delete", action: Delete(), existing: true, want: "delete"},
		{name: "detach file maps to update", action: DetachFile(), existing: true, want: "update"},
		{name: "custom maps to identifier", action: publish, existing: true, want: "publish"},
		{name: "custom on new entity", action: publish, existing: false, want: "publish"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.Ability(tt.existing); got != tt.want {
				t.Errorf("Ability(%v) = %q, want %q", tt.existing, got, tt.want)
			}
		})
	}
}
