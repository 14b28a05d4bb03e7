package quizboard

import (
	"encoding/json"
	"testing"
)

func TestLevelJSON(t *testing.T) {
	tests := []struct {
		level Level
		json  string
	}{
		{NumericLevel(1), `1`},
		{NumericLevel(3), `3`},
		{KeyLevel, `"key"`},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			data, err := json.Marshal(tt.level)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.json {
				t.Fatalf("marshal = %s, want %s", data, tt.json)
			}
			var got Level
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tt.level {
				t.Errorf("unmarshal = %v, want %v", got, tt.level)
			}
		})
	}
}

func TestLevelRejectsGarbage(t *testing.T) {
	for _, in := range []string{`0`, `4`, `"lock"`, `true`, `"2x"`} {
		var l Level
		if err := json.Unmarshal([]byte(in), &l); err == nil {
			t.Errorf("unmarshal %s: expected error, got %v", in, l)
		}
	}
	if _, err := json.Marshal(Level{}); err == nil {
		t.Error("marshal zero level: expected error")
	}
}

func TestLevelNumber(t *testing.T) {
	if n, ok := NumericLevel(2).Number(); !ok || n != 2 {
		t.Errorf("Number() = %d, %v; want 2, true", n, ok)
	}
	if _, ok := KeyLevel.Number(); ok {
		t.Error("key level should not report a number")
	}
	if !KeyLevel.IsKey() || NumericLevel(1).IsKey() {
		t.Error("IsKey mismatch")
	}
}
