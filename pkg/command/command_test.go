package command

import "testing"

func TestFrameEncoding(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Command
		frame string
	}{
		{"query", Query(Power), "*pow=?#"},
		{"value action", New(Source, "hdmi"), "*sour=hdmi#"},
		{"on action", New(Power, ActionOn), "*pow=on#"},
		{"volume increment", New(Volume, "+"), "*vol=+#"},
		{"trigger", Trigger("up"), "*up#"},
		{"name lowercased", Query("MODELNAME"), "*modelname=?#"},
		{"trigger lowercased", Trigger("ENTER"), "*enter#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.Frame(); got != tt.frame {
				t.Errorf("Frame() = %q, want %q", got, tt.frame)
			}
		})
	}
}

func TestAccessors(t *testing.T) {
	q := Query("POW")
	if q.Name() != "pow" {
		t.Errorf("Name() = %q, want %q", q.Name(), "pow")
	}
	if action, ok := q.Action(); !ok || action != ActionQuery {
		t.Errorf("Action() = %q, %v, want %q, true", action, ok, ActionQuery)
	}
	if !q.IsQuery() {
		t.Error("IsQuery() = false for query command")
	}

	tr := Trigger("up")
	if _, ok := tr.Action(); ok {
		t.Error("Action() reports present for trigger command")
	}
	if tr.IsQuery() {
		t.Error("IsQuery() = true for trigger command")
	}
}

func TestRaw(t *testing.T) {
	r := Raw("*menu=on#")
	if !r.IsRaw() {
		t.Error("IsRaw() = false for raw command")
	}
	if r.Name() != "" {
		t.Errorf("Name() = %q, want empty", r.Name())
	}
	if r.Frame() != "*menu=on#" {
		t.Errorf("Frame() = %q, want %q", r.Frame(), "*menu=on#")
	}
}
