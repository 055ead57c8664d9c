package sentiment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Sentiment is the reviewer's overall opinion, stored as a small integer code.
type Sentiment int

const (
	Negative Sentiment = -1
	Neutral  Sentiment = 0
	Positive Sentiment = 1
)

var names = map[Sentiment]string{
	Negative: "NEGATIVE",
	Neutral:  "NEUTRAL",
	Positive: "POSITIVE",
}

// FromCode maps a stored code back to a Sentiment. Unknown codes read as neutral.
func FromCode(code int) Sentiment {
	s := Sentiment(code)
	if _, ok := names[s]; !ok {
		return Neutral
	}
	return s
}

// Parse accepts either the name (case-insensitive) or the numeric code.
func Parse(v string) (Sentiment, error) {
	v = strings.TrimSpace(v)
	for s, name := range names {
		if strings.EqualFold(v, name) {
			return s, nil
		}
	}
	switch v {
	case "-1":
		return Negative, nil
	case "0":
		return Neutral, nil
	case "1":
		return Positive, nil
	}
	return Neutral, fmt.Errorf("unknown sentiment %q", v)
}

// Code returns the value persisted in the sentiment column.
func (s Sentiment) Code() int { return int(s) }

func (s Sentiment) String() string {
	if name, ok := names[s]; ok {
		return name
	}
	return fmt.Sprintf("Sentiment(%d)", int(s))
}

func (s Sentiment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Sentiment) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := Parse(name)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("sentiment must be a name or code: %w", err)
	}
	if _, ok := names[Sentiment(code)]; !ok {
		return fmt.Errorf("unknown sentiment code %d", code)
	}
	*s = Sentiment(code)
	return nil
}
