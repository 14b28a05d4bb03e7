package quizboard

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Level is the tier of a question: a numeric level 1..3 or the key tier.
// The zero value is invalid.
type Level struct {
	n   int
	key bool
}

// KeyLevel is the tier of key questions.
var KeyLevel = Level{key: true}

// NumericLevel returns the numeric tier n. It panics outside 1..3, which
// only a programming error can produce.
func NumericLevel(n int) Level {
	if n < 1 || n > MaxLevel {
		panic(fmt.Sprintf("quizboard: numeric level %d out of range", n))
	}
	return Level{n: n}
}

func (l Level) IsKey() bool { return l.key }

// Number returns the numeric tier and true, or 0 and false for the key tier.
func (l Level) Number() (int, bool) {
	if l.key {
		return 0, false
	}
	return l.n, l.n != 0
}

func (l Level) Valid() bool {
	return l.key || (l.n >= 1 && l.n <= MaxLevel)
}

func (l Level) String() string {
	if l.key {
		return "key"
	}
	return strconv.Itoa(l.n)
}

// ParseLevel accepts "1".."3" or "key".
func ParseLevel(s string) (Level, error) {
	if s == "key" {
		return KeyLevel, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > MaxLevel {
		return Level{}, fmt.Errorf("invalid level %q", s)
	}
	return Level{n: n}, nil
}

func (l Level) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("marshaling invalid level")
	}
	if l.key {
		return []byte(`"key"`), nil
	}
	return []byte(strconv.Itoa(l.n)), nil
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		parsed, err := ParseLevel(strconv.Itoa(n))
		if err != nil {
			return err
		}
		*l = parsed
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("level must be a number or \"key\": %s", data)
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
